package numerology

import (
	"fmt"
	"strings"
	"time"
)

const (
	minAge = 10
	maxAge = 120
)

// Validation holds the outcome of a birth date check.
// Failures are data, not errors - the caller decides how to surface them
type Validation struct {
	Valid bool
	Error string
}

// Breakdown keeps the human readable trace of a personal year calculation
type Breakdown struct {
	Sum    int
	Steps  []string
	Result int
}

// ReduceToSingleDigit sums base-10 digits until the value is a single digit.
// 0 passes through unchanged
func ReduceToSingleDigit(n int) int {
	for n > 9 {
		n = digitSum(n)
	}
	return n
}

// CalculatePersonalYear returns the personal year number in [1,9]
// for the given birth day, month and the target calendar year
func CalculatePersonalYear(day, month, targetYear int) int {
	return ReduceToSingleDigit(day + month + targetYear)
}

// ValidateBirthDate checks month, day-in-month and the implied age
// against the current calendar year
func ValidateBirthDate(day, month, year int) Validation {
	return validateBirthDateAt(day, month, year, time.Now().Year())
}

func validateBirthDateAt(day, month, year, currentYear int) Validation {
	if month < 1 || month > 12 {
		return Validation{Error: "Mes inválido"}
	}
	if day < 1 || day > daysInMonth(month, year) {
		return Validation{Error: "Día inválido para el mes seleccionado"}
	}
	if year < currentYear-maxAge || year > currentYear-minAge {
		return Validation{Error: fmt.Sprintf("Debes tener entre %d y %d años", minAge, maxAge)}
	}
	return Validation{Valid: true}
}

// CalculationBreakdown reproduces the exact intermediate arithmetic of
// ReduceToSingleDigit as display strings
func CalculationBreakdown(day, month, targetYear int) Breakdown {
	sum := day + month + targetYear
	res := Breakdown{Sum: sum}
	res.Steps = append(res.Steps, fmt.Sprintf("%d + %d + %d = %d", day, month, targetYear, sum))
	current := sum
	for current > 9 {
		next := digitSum(current)
		res.Steps = append(res.Steps, fmt.Sprintf("%s = %d", strings.Join(digits(current), " + "), next))
		current = next
	}
	res.Result = current
	return res
}

var monthNames = []string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

// FormatBirthDate returns the date as a display string, e.g. "15 de marzo de 1990"
func FormatBirthDate(day, month, year int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return fmt.Sprintf("%d de %s de %d", day, monthNames[month-1], year)
}

func daysInMonth(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func digitSum(n int) int {
	res := 0
	for n > 0 {
		res += n % 10
		n /= 10
	}
	return res
}

func digits(n int) []string {
	s := fmt.Sprintf("%d", n)
	res := make([]string, 0, len(s))
	for _, c := range s {
		res = append(res, string(c))
	}
	return res
}

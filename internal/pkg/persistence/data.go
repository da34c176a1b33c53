package persistence

import (
	"database/sql"
	"fmt"
	"time"
)

type (

	// Result table - one row per reading request
	Result struct {
		ID              string
		UserName        sql.NullString
		BirthDate       time.Time
		VibrationNumber int
		Reading         *Reading
		ImageBlobPath   sql.NullString
		ErrorMessage    sql.NullString
		Status          string
		Created         time.Time
		Updated         time.Time
	}

	// Reading is the structured AI generated content, stored as jsonb
	Reading struct {
		Headline       string       `json:"headline"`
		Overview       string       `json:"overview"`
		LoveLife       string       `json:"loveLife"`
		Career         string       `json:"career"`
		Health         string       `json:"health"`
		Spirituality   string       `json:"spirituality"`
		Advice         []AdviceItem `json:"advice"`
		NewYearMessage string       `json:"newYearMessage"`
		Mantra         string       `json:"mantra"`
	}

	// AdviceItem is one actionable tip for a life area
	AdviceItem struct {
		Area string `json:"area"`
		Tip  string `json:"tip"`
		Icon string `json:"icon"`
	}
)

const adviceCount = 5

// Validate checks the generated reading satisfies the content contract
func (r *Reading) Validate() error {
	fields := []struct{ name, value string }{
		{"headline", r.Headline},
		{"overview", r.Overview},
		{"loveLife", r.LoveLife},
		{"career", r.Career},
		{"health", r.Health},
		{"spirituality", r.Spirituality},
		{"newYearMessage", r.NewYearMessage},
		{"mantra", r.Mantra},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("no '%s'", f.name)
		}
	}
	if len(r.Advice) != adviceCount {
		return fmt.Errorf("wanted %d advice items, got %d", adviceCount, len(r.Advice))
	}
	for i, a := range r.Advice {
		if a.Area == "" || a.Tip == "" {
			return fmt.Errorf("empty advice item at %d", i)
		}
	}
	return nil
}

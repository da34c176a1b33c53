package prompts

import (
	"fmt"
	"strings"

	"github.com/vibra-app/vibra/internal/pkg/vibration"
)

const defaultUserName = "Viajero"

// StructuredReading builds the prompt for the structured reading generation
func StructuredReading(v *vibration.Vibration, userName string, targetYear int) string {
	if userName == "" {
		userName = defaultUserName
	}
	return fmt.Sprintf(`Eres un experto en numerología con un estilo místico pero accesible.
Genera una lectura COMPLETA y personalizada para %s, cuyo Año Personal %d es el número %d (%s).

CONTEXTO:
- Número: %d
- Nombre de la vibración: %s
- Energía principal: %s
- Palabras clave: %s
- Elemento: %s

INSTRUCCIONES:
1. Personaliza todo el contenido mencionando a %s donde sea apropiado
2. Usa un tono místico pero accesible y esperanzador
3. Incluye referencias específicas al significado del número %d
4. El mensaje de año nuevo debe ser cálido y personal, dirigido a %s
5. El mantra debe ser memorable y relacionado con la energía del %d
6. Usa "tú" para dirigirte al lector
7. NO uses asteriscos ni formato markdown
8. Escribe en español

IMPORTANTE: Genera contenido ÚNICO y ESPECÍFICO para cada área de vida.`,
		userName, targetYear, v.Number, v.Name,
		v.Number, v.Name, v.Energy, strings.Join(v.Keywords, ", "), v.Element,
		userName, v.Number, userName, v.Number)
}

// Image builds the prompt for the artwork generation
func Image(v *vibration.Vibration, withPhoto bool, targetYear int) string {
	res := fmt.Sprintf(`Create a mystical, ethereal digital artwork representing the numerology Year %d - "%s" for %d.

VISUAL STYLE:
- Color palette: Rich golds, deep blacks, cosmic purples, warm ambers
- Aesthetic: Mystical, cosmic, New Year celebration, luxury
- Mood: Inspiring, magical, hopeful, transformative
- Quality: High detail, professional digital art, 4K quality

KEY ELEMENTS TO INCLUDE:
- The number "%d" integrated elegantly into the composition
- %s
- Golden particles and light rays
- Cosmic/starry background elements
- Subtle "%d" text or New Year elements

COMPOSITION:
- Vertical format optimized for mobile/stories (9:16 aspect ratio)
- Central focal point with the number
- Ethereal glow and light effects
- Space for text overlay at bottom

DO NOT INCLUDE:
- Human faces or recognizable people
- Text other than the number
- Realistic photographs
- Cluttered compositions`,
		v.Number, v.Name, targetYear,
		v.Number, strings.Join(v.ImageKeywords, ", "), targetYear)

	if withPhoto {
		res += `

ADDITIONAL INSTRUCTION:
Incorporate the provided reference photo in a stylized, artistic way -
transform it into part of the mystical composition while maintaining
the overall ethereal aesthetic. The person should appear dreamlike and
integrated with the cosmic elements.`
	}
	return res
}

// ShareMessage builds the text for sharing a completed reading
func ShareMessage(v *vibration.Vibration, summary string, tips []string, targetYear int, appURL string) string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("✨ Mi Vibración %d: Año %d - %s ✨\n\n", targetYear, v.Number, v.ShortName))
	sb.WriteString(summary)
	sb.WriteString(fmt.Sprintf("\n\n🔮 Mis consejos para %d:\n", targetYear))
	for i, tip := range tips {
		if i >= 4 {
			break
		}
		sb.WriteString("• " + tip + "\n")
	}
	sb.WriteString("\nDescubre tu vibración en: " + appURL)
	return sb.String()
}

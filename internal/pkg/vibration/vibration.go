package vibration

import "fmt"

// Vibration is the static profile of one personal year number
type Vibration struct {
	Number        int
	Name          string
	ShortName     string
	Energy        string
	Description   string
	Keywords      []string
	ImageKeywords []string
	Color         string
	Element       string
	Emoji         string
}

var vibrations = map[int]*Vibration{
	1: {
		Number:        1,
		Name:          "El Año de los Nuevos Comienzos",
		ShortName:     "Nuevos Comienzos",
		Energy:        "Independencia, liderazgo, iniciativa",
		Description:   "Este es tu año para plantar semillas. La energía del 1 te impulsa a tomar la iniciativa, comenzar proyectos nuevos y liderar tu propio camino. Es momento de independencia y autoafirmación.",
		Keywords:      []string{"independencia", "liderazgo", "iniciativa", "coraje", "originalidad"},
		ImageKeywords: []string{"sunrise", "phoenix", "golden light", "new dawn", "first ray of light", "mountain peak"},
		Color:         "#FF6B35",
		Element:       "Fuego",
		Emoji:         "🌅",
	},
	2: {
		Number:        2,
		Name:          "El Año de la Armonía",
		ShortName:     "Armonía",
		Energy:        "Relaciones, cooperación, paciencia",
		Description:   "La energía del 2 trae equilibrio y conexión. Es un año para fortalecer relaciones, colaborar con otros y desarrollar la paciencia. Las asociaciones florecen bajo esta vibración.",
		Keywords:      []string{"armonía", "cooperación", "paciencia", "diplomacia", "sensibilidad"},
		ImageKeywords: []string{"balance", "yin-yang", "soft glow", "partnership", "two moons", "reflection on water"},
		Color:         "#4A90A4",
		Element:       "Agua",
		Emoji:         "☯️",
	},
	3: {
		Number:        3,
		Name:          "El Año de la Expresión",
		ShortName:     "Expresión",
		Energy:        "Creatividad, comunicación, alegría",
		Description:   "El 3 despierta tu voz creativa. Es momento de expresarte, comunicar tus ideas y disfrutar de la vida social. La alegría y el optimismo son tus aliados este año.",
		Keywords:      []string{"creatividad", "expresión", "alegría", "comunicación", "optimismo"},
		ImageKeywords: []string{"colors explosion", "creativity", "sparkles", "joy", "paintbrush strokes", "dancing light"},
		Color:         "#FFD700",
		Element:       "Aire",
		Emoji:         "🎨",
	},
	4: {
		Number:        4,
		Name:          "El Año de los Fundamentos",
		ShortName:     "Fundamentos",
		Energy:        "Estructura, trabajo, estabilidad",
		Description:   "La energía del 4 pide construir bases sólidas. Es año de trabajo dedicado, organización y crear estructuras duraderas. La disciplina te lleva al éxito.",
		Keywords:      []string{"estructura", "trabajo", "estabilidad", "disciplina", "organización"},
		ImageKeywords: []string{"earth", "roots", "structure", "golden bricks", "foundation stones", "solid ground"},
		Color:         "#8B4513",
		Element:       "Tierra",
		Emoji:         "🏛️",
	},
	5: {
		Number:        5,
		Name:          "El Año del Cambio",
		ShortName:     "Cambio",
		Energy:        "Libertad, aventura, transformación",
		Description:   "El 5 trae movimiento y transformación. Espera cambios emocionantes, aventuras y la libertad de explorar nuevos horizontes. Abraza lo inesperado.",
		Keywords:      []string{"libertad", "aventura", "cambio", "versatilidad", "movimiento"},
		ImageKeywords: []string{"wind", "transformation", "butterfly metamorphosis", "motion blur", "open road", "wings"},
		Color:         "#9B59B6",
		Element:       "Éter",
		Emoji:         "🦋",
	},
	6: {
		Number:        6,
		Name:          "El Año del Amor",
		ShortName:     "Amor",
		Energy:        "Familia, responsabilidad, servicio",
		Description:   "La vibración del 6 centra la energía en el hogar y los seres queridos. Es año para nutrir relaciones familiares, asumir responsabilidades con amor y servir a otros.",
		Keywords:      []string{"amor", "familia", "responsabilidad", "servicio", "armonía del hogar"},
		ImageKeywords: []string{"heart", "family embrace", "warmth", "home", "rose garden", "nurturing light"},
		Color:         "#E91E63",
		Element:       "Venus",
		Emoji:         "💕",
	},
	7: {
		Number:        7,
		Name:          "El Año de la Introspección",
		ShortName:     "Introspección",
		Energy:        "Espiritualidad, sabiduría, análisis",
		Description:   "El 7 invita a la reflexión profunda. Es momento de buscar respuestas internas, desarrollar la espiritualidad y confiar en tu intuición. La sabiduría viene del silencio.",
		Keywords:      []string{"espiritualidad", "sabiduría", "introspección", "intuición", "análisis"},
		ImageKeywords: []string{"stars", "meditation", "cosmic", "third eye", "mystic forest", "moonlight meditation"},
		Color:         "#6A5ACD",
		Element:       "Neptuno",
		Emoji:         "🔮",
	},
	8: {
		Number:        8,
		Name:          "El Año de la Abundancia",
		ShortName:     "Abundancia",
		Energy:        "Poder, logros, manifestación",
		Description:   "La energía del 8 atrae abundancia material y éxito. Es año para manifestar tus metas, alcanzar logros importantes y ejercer tu poder personal con responsabilidad.",
		Keywords:      []string{"abundancia", "poder", "éxito", "manifestación", "logros"},
		ImageKeywords: []string{"gold coins", "success", "crown", "prosperity", "infinity symbol", "treasure"},
		Color:         "#FFD700",
		Element:       "Saturno",
		Emoji:         "👑",
	},
	9: {
		Number:        9,
		Name:          "El Año de la Transformación",
		ShortName:     "Transformación",
		Energy:        "Cierre de ciclos, humanitarismo, sabiduría",
		Description:   "El 9 cierra un ciclo de 9 años. Es momento de soltar lo que ya no sirve, practicar la compasión y prepararse para un nuevo comienzo. La sabiduría de tus experiencias te guía.",
		Keywords:      []string{"transformación", "cierre", "humanitarismo", "compasión", "sabiduría"},
		ImageKeywords: []string{"phoenix rebirth", "ending", "rebirth", "spiral galaxy", "sunset and sunrise", "completion"},
		Color:         "#FF4500",
		Element:       "Marte",
		Emoji:         "🔥",
	},
}

// Get returns the vibration profile by number
func Get(number int) (*Vibration, bool) {
	res, ok := vibrations[number]
	return res, ok
}

// All returns all vibrations ordered by number
func All() []*Vibration {
	res := make([]*Vibration, 0, len(vibrations))
	for i := 1; i <= 9; i++ {
		res = append(res, vibrations[i])
	}
	return res
}

// Title returns the display title, e.g. "5 - Cambio"
func Title(number int) string {
	v, ok := vibrations[number]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d - %s", v.Number, v.ShortName)
}

package locale

// Lang selects which of the two localized text variants is shown first.
type Lang string

// Supported languages.
const (
	English Lang = "en"
	Arabic  Lang = "ar"
)

// Parse maps a request value onto a supported language, defaulting to English.
func Parse(s string) Lang {
	if Lang(s) == Arabic {
		return Arabic
	}
	return English
}

// Pick returns the variant for the language, falling back to the other one
// when the preferred variant is blank.
// PRE: none
// POST: returns "" only when both variants are blank
func (l Lang) Pick(en, ar string) string {
	if l == Arabic {
		if ar != "" {
			return ar
		}
		return en
	}
	if en != "" {
		return en
	}
	return ar
}

// Dir returns the page text direction for the language.
func (l Lang) Dir() string {
	if l == Arabic {
		return "rtl"
	}
	return "ltr"
}

// Toggle returns the other supported language.
func (l Lang) Toggle() Lang {
	if l == Arabic {
		return English
	}
	return Arabic
}

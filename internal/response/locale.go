package response

import "strings"

// Locale identifies a message language. It is passed explicitly from the
// HTTP layer down to response helpers; nothing reads ambient locale state.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleID Locale = "id"
)

// ParseLocale resolves a request locale from an explicit ?lang= override
// and the Accept-Language header, in that order. Unknown values fall back
// to English.
func ParseLocale(langQuery, acceptLanguage string) Locale {
	if loc, ok := matchLocale(langQuery); ok {
		return loc
	}
	// Accept-Language: take the first tag, ignore weights.
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if loc, ok := matchLocale(tag); ok {
			return loc
		}
	}
	return LocaleEN
}

func matchLocale(tag string) (Locale, bool) {
	base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
	switch base {
	case "en":
		return LocaleEN, true
	case "id":
		return LocaleID, true
	}
	return LocaleEN, false
}

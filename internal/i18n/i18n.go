// Package i18n holds the per-request language and theme preferences and the
// UI string dictionary.
package i18n

import "strings"

// Language is a display language code.
type Language string

const (
	English Language = "en"
	Tamil   Language = "ta"
)

// Theme is the colour scheme of the rendered pages.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Cookie and query parameter names carrying the preferences.
const (
	LanguageKey = "lang"
	ThemeKey    = "theme"
)

// ParseLanguage accepts "en" or "ta" in any case.
func ParseLanguage(s string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case English:
		return English, true
	case Tamil:
		return Tamil, true
	}
	return "", false
}

// Other returns the language the toggle switches to.
func (l Language) Other() Language {
	if l == Tamil {
		return English
	}
	return Tamil
}

// ParseTheme accepts "light" or "dark" in any case.
func ParseTheme(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

func (t Theme) Other() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Preferences is passed explicitly to every view.
type Preferences struct {
	Language Language
	Theme    Theme
}

// Defaults builds the process-wide preferences, falling back to English and
// the light theme for unknown values.
func Defaults(language, theme string) Preferences {
	p := Preferences{Language: English, Theme: Light}
	if l, ok := ParseLanguage(language); ok {
		p.Language = l
	}
	if t, ok := ParseTheme(theme); ok {
		p.Theme = t
	}
	return p
}

// Resolve applies the per-request overrides on top of the defaults. A query
// parameter wins over a cookie; invalid values are ignored.
func (p Preferences) Resolve(query, cookie func(key string) string) Preferences {
	for _, lookup := range []func(string) string{cookie, query} {
		if lookup == nil {
			continue
		}
		if l, ok := ParseLanguage(lookup(LanguageKey)); ok {
			p.Language = l
		}
		if t, ok := ParseTheme(lookup(ThemeKey)); ok {
			p.Theme = t
		}
	}
	return p
}

// T translates key in the active language.
func (p Preferences) T(key string) string {
	return Translate(p.Language, key)
}

func (p Preferences) IsTamil() bool {
	return p.Language == Tamil
}

func (p Preferences) IsDark() bool {
	return p.Theme == Dark
}

// Translate returns the dictionary entry for key, or key itself when there
// is none.
func Translate(lang Language, key string) string {
	if s, ok := dictionary[lang][key]; ok && s != "" {
		return s
	}
	return key
}

var dictionary = map[Language]map[string]string{
	English: {
		"home":           "Home",
		"videos":         "Videos",
		"admin":          "Admin Log In",
		"readMore":       "Read More",
		"latestNews":     "Latest News",
		"trending":       "Trending",
		"switchLanguage": "தமிழ்",
		"darkMode":       "Dark mode",
		"lightMode":      "Light mode",
		"login":          "Login",
		"logout":         "Logout",
		"logoutAll":      "Sign out everywhere",
		"dashboard":      "Dashboard",
		"uploadNews":     "Upload News",
		"upload":         "Upload",
		"title":          "Title",
		"description":    "Description",
		"category":       "Category",
		"submit":         "Submit",
		"loading":        "Loading...",
		"newsPortal":     "7news",
		"back":           "Back",
		"relatedNews":    "Related News",
		"newsNotFound":   "News Not Found",
		"returnHome":     "Return Home",
		"noNews":         "No news yet.",
		"loadFailed":     "Could not load news. Please try again.",
		"edit":           "Edit",
		"delete":         "Delete",
		"cancel":         "Cancel",
		"confirmDelete":  "Are you sure you want to delete this item?",
		"videoUrl":       "Video URL",
		"image":          "Image",
		"email":          "Email",
		"password":       "Password",
		"created":        "Created",
		"retry":          "Try again",
	},
	Tamil: {
		"home":           "முகப்பு",
		"videos":         "காணொளிகள்",
		"admin":          "நிர்வாகப் பக்கம்",
		"readMore":       "மேலும் படிக்க",
		"latestNews":     "சமீபத்திய செய்திகள்",
		"trending":       "டிரெண்டிங்",
		"switchLanguage": "English",
		"darkMode":       "இருண்ட பயன்முறை",
		"lightMode":      "ஒளி பயன்முறை",
		"login":          "உள்நுழை",
		"logout":         "வெளியேறு",
		"logoutAll":      "எல்லா இடங்களிலும் வெளியேறு",
		"dashboard":      "முகப்பு பலகை",
		"uploadNews":     "செய்தியைப் பதிவேற்றவும்",
		"upload":         "பதிவேற்று",
		"title":          "தலைப்பு",
		"description":    "விளக்கம்",
		"category":       "வகை",
		"submit":         "சமர்ப்பிக்க",
		"loading":        "ஏற்றுகிறது...",
		"newsPortal":     "7news",
		"back":           "பின்செல்",
		"relatedNews":    "தொடர்புடைய செய்திகள்",
		"newsNotFound":   "செய்தி கிடைக்கவில்லை",
		"returnHome":     "முகப்புக்குத் திரும்பு",
		"noNews":         "இன்னும் செய்திகள் இல்லை.",
		"loadFailed":     "செய்திகளை ஏற்ற முடியவில்லை. மீண்டும் முயற்சிக்கவும்.",
		"edit":           "திருத்து",
		"delete":         "நீக்கு",
		"cancel":         "ரத்து",
		"confirmDelete":  "இந்தச் செய்தியை நீக்க விரும்புகிறீர்களா?",
		"videoUrl":       "காணொளி URL",
		"image":          "படம்",
		"email":          "மின்னஞ்சல்",
		"password":       "கடவுச்சொல்",
		"created":        "உருவாக்கப்பட்டது",
		"retry":          "மீண்டும் முயற்சி",
	},
}

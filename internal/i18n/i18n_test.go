package i18n

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lookup(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	require.Equal(t, Preferences{Language: English, Theme: Light}, Defaults("", ""))
	require.Equal(t, Preferences{Language: Tamil, Theme: Dark}, Defaults("TA", "Dark"))
	require.Equal(t, Preferences{Language: English, Theme: Light}, Defaults("fr", "sepia"))
}

func TestResolve(t *testing.T) {
	base := Defaults("en", "light")

	tests := []struct {
		name   string
		query  map[string]string
		cookie map[string]string
		want   Preferences
	}{
		{name: "no overrides", want: base},
		{name: "cookie", cookie: map[string]string{"lang": "ta", "theme": "dark"}, want: Preferences{Tamil, Dark}},
		{name: "query beats cookie", query: map[string]string{"lang": "en"}, cookie: map[string]string{"lang": "ta"}, want: Preferences{English, Light}},
		{name: "invalid query ignored", query: map[string]string{"lang": "de"}, cookie: map[string]string{"lang": "ta"}, want: Preferences{Tamil, Light}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, base.Resolve(lookup(tt.query), lookup(tt.cookie)))
		})
	}

	require.Equal(t, base, base.Resolve(nil, nil))
}

func TestTranslate(t *testing.T) {
	require.Equal(t, "Read More", Translate(English, "readMore"))
	require.Equal(t, "மேலும் படிக்க", Translate(Tamil, "readMore"))
	require.Equal(t, "தமிழ்", Preferences{Language: English}.T("switchLanguage"))
	require.Equal(t, "English", Preferences{Language: Tamil}.T("switchLanguage"))
	require.Equal(t, "7news", Translate(Tamil, "newsPortal"))

	require.Equal(t, "noSuchKey", Translate(English, "noSuchKey"))
	require.Equal(t, "home", Translate(Language("fr"), "home"))
}

func TestDictionariesHaveSameKeys(t *testing.T) {
	for key := range dictionary[English] {
		require.Contains(t, dictionary[Tamil], key)
	}
	require.Len(t, dictionary[Tamil], len(dictionary[English]))
}

func TestToggles(t *testing.T) {
	require.Equal(t, Tamil, English.Other())
	require.Equal(t, English, Tamil.Other())
	require.Equal(t, Dark, Light.Other())
	require.Equal(t, Light, Dark.Other())
}

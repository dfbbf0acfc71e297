package response

import "testing"

func TestParseLocale(t *testing.T) {
	tests := []struct {
		name         string
		langQuery    string
		acceptHeader string
		want         Locale
	}{
		{"query wins", "id", "en-US,en;q=0.9", LocaleID},
		{"header only", "", "id-ID,id;q=0.9,en;q=0.8", LocaleID},
		{"regional english", "", "en-GB", LocaleEN},
		{"unknown falls back", "", "fr-FR,fr;q=0.9", LocaleEN},
		{"empty", "", "", LocaleEN},
		{"unknown query ignored", "de", "id", LocaleID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLocale(tt.langQuery, tt.acceptHeader); got != tt.want {
				t.Errorf("ParseLocale(%q, %q) = %q, want %q", tt.langQuery, tt.acceptHeader, got, tt.want)
			}
		})
	}
}

func TestGetMessageFallback(t *testing.T) {
	// A known code resolves in both locales.
	if GetMessage(LocaleID, ErrNotFound) == GetMessage(LocaleEN, ErrNotFound) {
		t.Error("expected distinct translations for ErrNotFound")
	}

	// An unknown code falls back to the generic text.
	if msg := GetMessage(LocaleEN, ErrCode("NO_SUCH_CODE")); msg != "An unexpected error occurred." {
		t.Errorf("unexpected fallback message: %q", msg)
	}

	// An unknown locale falls back to English.
	if msg := GetMessage(Locale("fr"), ErrNotFound); msg != GetMessage(LocaleEN, ErrNotFound) {
		t.Errorf("unknown locale should fall back to English, got %q", msg)
	}
}

package language

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ja", "ja"},
		{"JA", "ja"},
		{"japanese", "ja"},
		{"jpn", "ja"},
		{"pt-BR", "pt-BR"},
		{"", ""},
		{"not a language", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestToISO2(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"eng", "en"},
		{"english", "en"},
		{"pt-BR", "pt"},
		{"ko", "ko"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToISO2(tt.input); got != tt.want {
			t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ja", "Japanese"},
		{"japanese", "Japanese"},
		{"en", "English"},
		{"", "Unknown"},
		{"zz-invalid-!", "ZZ-INVALID-!"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.input); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExtractFromTags(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want string
	}{
		{"standard key", map[string]string{"language": "jpn"}, "ja"},
		{"uppercase key", map[string]string{"LANGUAGE": "eng"}, "en"},
		{"undetermined skipped", map[string]string{"language": "und", "lang": "ko"}, "ko"},
		{"empty tags", nil, ""},
		{"garbage value", map[string]string{"language": "!!"}, ""},
		{"embedded nul stripped", map[string]string{"language": "jpn\u0000"}, "ja"},
	}
	for _, tt := range tests {
		if got := ExtractFromTags(tt.tags); got != tt.want {
			t.Errorf("%s: ExtractFromTags = %q, want %q", tt.name, got, tt.want)
		}
	}
}

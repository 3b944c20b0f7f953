package language

import "testing"

func TestToProvider(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  string
	}{
		{"hr", "Hrvatski"},
		{"HRV", "Hrvatski"},
		{"  bs ", "Bosanski"},
		{"bos", "Bosanski"},
		{"en", "English"},
		{"eng", "English"},
		{"mk", "Makedonski"},
		{"mkd", "Makedonski"},
		{"sr", "Srpski"},
		{"srp", "Srpski"},
		{"sl", "Slovenski"},
		{"slv", "Slovenski"},
		{"cyr", "Cirilica"},
		{"Cir", "Cirilica"},
		{"de", ""},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := ToProvider(tt.input); got != tt.want {
				t.Errorf("ToProvider(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFromProvider(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  string
	}{
		{"Hrvatski", "hrv"},
		{" hrvatski ", "hrv"},
		{"BOSANSKI", "bos"},
		{"English", "eng"},
		{"Makedonski", "mkd"},
		{"Srpski", "srp"},
		{"Slovenski", "slv"},
		{"Cirilica", "srp"},
		{"Deutsch", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := FromProvider(tt.input); got != tt.want {
				t.Errorf("FromProvider(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Every provider name survives a trip through its ISO code, except Cirilica
// which collapses onto Serbian and comes back as Srpski.
func TestRoundTrip(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"Hrvatski", "Bosanski", "English", "Makedonski", "Srpski", "Slovenski"} {
		if got := ToProvider(FromProvider(name)); got != name {
			t.Errorf("ToProvider(FromProvider(%q)) = %q, want %q", name, got, name)
		}
	}

	if got := ToProvider(FromProvider("Cirilica")); got != "Srpski" {
		t.Errorf("Cirilica round trip = %q, want the lossy Srpski", got)
	}

	for _, code := range []string{"hrv", "bos", "eng", "mkd", "srp", "slv"} {
		if got := FromProvider(ToProvider(code)); got != code {
			t.Errorf("FromProvider(ToProvider(%q)) = %q, want %q", code, got, code)
		}
	}
}

func TestSupported(t *testing.T) {
	t.Parallel()
	if !Supported("hr") || Supported("fr") {
		t.Error("unexpected Supported() result")
	}
}

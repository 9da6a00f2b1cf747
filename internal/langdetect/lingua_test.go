package langdetect

import "testing"

func TestDetectISO6391(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Привіт, як справи сьогодні?", "uk"},
		{"Hello, how are you doing today?", "en"},
		{"Дякую за допомогу з перекладом", "uk"},
		{"", ""},
		{"   ", ""},
		{"42 + 17", ""},
	}
	for _, tc := range cases {
		if got := DetectISO6391(tc.text); got != tc.want {
			t.Fatalf("DetectISO6391(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

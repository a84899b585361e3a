package catalog

import "testing"

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`<em class="keyword">Song</em> Name`, "Song Name"},
		{"Plain Title", "Plain Title"},
		{`<em class="keyword">a</em><em class="keyword">b</em>`, "ab"},
	}

	for _, tt := range tests {
		if got := cleanTitle(tt.in); got != tt.want {
			t.Errorf("cleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeArtworkURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"//i0.example.com/pic.jpg", "https://i0.example.com/pic.jpg"},
		{"https://i0.example.com/pic.jpg", "https://i0.example.com/pic.jpg"},
		{"http://i0.example.com/pic.jpg", "http://i0.example.com/pic.jpg"},
		{"i0.example.com/pic.jpg", "https://i0.example.com/pic.jpg"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeArtworkURL(tt.in); got != tt.want {
			t.Errorf("normalizeArtworkURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseClockDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"4:13", 253},
		{"1:02:03", 3723},
		{"0:59", 59},
		{"", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		if got := parseClockDuration(tt.in); got != tt.want {
			t.Errorf("parseClockDuration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestArtistOrDefault(t *testing.T) {
	if got := artistOrDefault(""); got != "Unknown Artist" {
		t.Errorf("artistOrDefault(\"\") = %q", got)
	}
	if got := artistOrDefault("Someone"); got != "Someone" {
		t.Errorf("artistOrDefault(\"Someone\") = %q", got)
	}
}

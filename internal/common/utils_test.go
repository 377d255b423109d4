package common

import "testing"

func TestHasAny(t *testing.T) {
	tests := []struct {
		s    string
		subs []string
		want bool
	}{
		{"light rain shower", []string{"rain"}, true},
		{"light rain shower", []string{"snow", "rain"}, true},
		{"clear sky", []string{"rain", "snow"}, false},
		{"", []string{"rain"}, false},
		{"anything", nil, false},
	}
	for _, tt := range tests {
		if got := HasAny(tt.s, tt.subs...); got != tt.want {
			t.Errorf("HasAny(%q, %v) = %v, want %v", tt.s, tt.subs, got, tt.want)
		}
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"light rain", "Light rain"},
		{"Rain", "Rain"},
		{"", ""},
		{"åska", "Åska"},
	}
	for _, tt := range tests {
		if got := Capitalize(tt.in); got != tt.want {
			t.Errorf("Capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

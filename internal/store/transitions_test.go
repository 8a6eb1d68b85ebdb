package store

import "testing"

func TestValidTransition(t *testing.T) {
	cases := []struct {
		action string
		from   string
		valid  bool
	}{
		{"call", "waiting", true},
		{"call", "calling", true},
		{"call", "finished", false},
		{"call", "missed", false},
		{"finish", "calling", true},
		{"finish", "waiting", false},
		{"finish", "finished", false},
		{"finish", "missed", false},
		{"miss", "calling", true},
		{"miss", "waiting", false},
		{"miss", "finished", false},
		{"miss", "missed", false},
		{"unknown", "waiting", false},
	}

	for _, tt := range cases {
		if got := ValidTransition(tt.action, tt.from); got != tt.valid {
			t.Fatalf("ValidTransition(%q, %q)=%v, want %v", tt.action, tt.from, got, tt.valid)
		}
	}
}

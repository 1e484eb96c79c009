package application_test

import (
	"testing"

	"espresso-log/internal/application"
)

func TestResolveByName(t *testing.T) {
	candidates := []application.Named{
		{ID: "b1", Name: "Ethiopian Yirgacheffe"},
		{ID: "b2", Name: "Brazil Santos"},
	}

	tests := []struct {
		query  string
		wantID string
		found  bool
	}{
		{"Ethiopia", "b1", true},                        // partial utterance
		{"ethiopian yirgacheffe", "b1", true},           // exact, case-insensitive
		{"the Brazil Santos beans from the shelf", "b2", true}, // candidate inside query
		{"colombia", "", false},
		{"", "", false},
		{"   ", "", false},
	}

	for _, tt := range tests {
		id, found := application.ResolveByName(candidates, tt.query)
		if found != tt.found || id != tt.wantID {
			t.Errorf("ResolveByName(%q) = (%q, %t), want (%q, %t)", tt.query, id, found, tt.wantID, tt.found)
		}
	}
}

func TestResolveByName_FirstMatchWins(t *testing.T) {
	candidates := []application.Named{
		{ID: "p1", Name: "Maria"},
		{ID: "p2", Name: "Mariana"},
	}

	id, found := application.ResolveByName(candidates, "maria")
	if !found || id != "p1" {
		t.Errorf("expected first match p1, got %q (found=%t)", id, found)
	}
}

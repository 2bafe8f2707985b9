package services

import (
	"math"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  Go\t1.25\n is   out ", "go 125 is out"},
		{"C++ & Node.js", "c nodejs"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExactMatch(t *testing.T) {
	if !ExactMatch("The  Answer.", "the answer") {
		t.Error("expected normalized strings to match")
	}
	if ExactMatch("the answer", "an answer") {
		t.Error("expected different strings not to match")
	}
}

func TestTokenF1(t *testing.T) {
	tests := []struct {
		name       string
		prediction string
		truth      string
		want       float64
	}{
		{"identical", "Go and Docker", "go and docker", 1},
		{"disjoint", "python", "rust", 0},
		{"empty prediction", "", "rust", 0},
		{"empty truth", "rust", "", 0},
		// 2 shared of 4 predicted and 2 truth tokens: p=0.5 r=1
		{"partial", "go docker aws gcp", "go docker", 2.0 / 3.0},
		// truth has one "go", so the second predicted "go" does not count
		{"multiplicity", "go go", "go rust", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenF1(tt.prediction, tt.truth); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TokenF1(%q, %q) = %v, want %v", tt.prediction, tt.truth, got, tt.want)
			}
		})
	}
}

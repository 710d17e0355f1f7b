package search

import "testing"

func TestNormalizeDigits(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"984-111-2222", "9841112222"},
		{"(984) 111 2222", "9841112222"},
		{"+1 984.111.2222", "19841112222"},
		{"9841112222", "9841112222"},
		{"no digits here", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeDigits(tt.raw); got != tt.want {
			t.Errorf("NormalizeDigits(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestSameNumber(t *testing.T) {
	if !SameNumber("984-111-2222", "9841112222") {
		t.Error("formatted and bare forms must match")
	}
	if SameNumber("9841112222", "9841112223") {
		t.Error("different digit sequences must not match")
	}
	if SameNumber("", "") {
		t.Error("two empty numbers are not an exact match")
	}
}

package utils

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+55 11 91994-1208", "5511919941208"},
		{"5511919941208", "5511919941208"},
		{"(11) 91994-1208", "11919941208"},
		{"  5511919941208  ", "5511919941208"},
	}

	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"5511919941208", true},
		{"15551234567", true},
		{"0511919941208", false},
		{"1234567", false},
		{"55119199412081234", false},
		{"55abc19941208", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidatePhone(tt.phone); got != tt.valid {
			t.Errorf("ValidatePhone(%q) = %v, want %v", tt.phone, got, tt.valid)
		}
	}
}

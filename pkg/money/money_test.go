package money

import "testing"

func TestFmt(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"zero", 0, "        0.00"},
		{"small", 1.5, "        1.50"},
		{"rounds to pennies", 1.005, "        1.01"},
		{"thousands grouped", 1234567.89, "1,234,567.89"},
		{"negative", -4500, "   -4,500.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fmt(tt.value); got != tt.want {
				t.Errorf("Fmt(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestFmtJoinsValues(t *testing.T) {
	got := FmtN(6, 2, 1, 2.5)
	want := "  1.00,   2.50"
	if got != want {
		t.Errorf("FmtN() = %q, want %q", got, want)
	}
}

func TestFmtNWiderThanField(t *testing.T) {
	if got := FmtN(4, 2, 123456.78); got != "123,456.78" {
		t.Errorf("FmtN() = %q, want unpadded 123,456.78", got)
	}
}

package interval

import "testing"

func span(start, end int) Span {
	return Span{Start: start, End: end}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{"identical", span(540, 600), span(540, 600), true},
		{"contained", span(540, 660), span(570, 600), true},
		{"partial", span(540, 600), span(570, 630), true},
		{"shared boundary", span(540, 600), span(600, 660), false},
		{"disjoint", span(540, 600), span(720, 780), false},
		{"containment with shared start", span(540, 660), span(540, 600), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// overlap is symmetric
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestSpanOverlapsItself(t *testing.T) {
	s := span(0, MinutesPerDay)
	if !Overlaps(s, s) {
		t.Error("a span must overlap itself")
	}
}

func TestSpanValid(t *testing.T) {
	tests := []struct {
		name string
		s    Span
		want bool
	}{
		{"normal", span(540, 600), true},
		{"whole day", span(0, MinutesPerDay), true},
		{"zero length", span(540, 540), false},
		{"inverted", span(600, 540), false},
		{"negative start", span(-10, 60), false},
		{"past midnight", span(1380, MinutesPerDay+30), false},
	}
	for _, tt := range tests {
		if got := tt.s.Valid(); got != tt.want {
			t.Errorf("%s: Valid(%v) = %v, want %v", tt.name, tt.s, got, tt.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"09:00", 540, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for _, min := range []int{0, 540, 555, 1439} {
		got, err := ParseClock(FormatClock(min))
		if err != nil {
			t.Fatalf("round trip %d: %v", min, err)
		}
		if got != min {
			t.Errorf("round trip %d: got %d", min, got)
		}
	}
}

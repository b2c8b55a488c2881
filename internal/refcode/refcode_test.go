package refcode

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c, err := New("test-salt", 8)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	for _, id := range []int64{1, 42, 987654321} {
		code, err := c.Encode(id)
		if err != nil {
			t.Fatalf("encode %d: %v", id, err)
		}
		if len(code) < 8 {
			t.Errorf("code %q shorter than min length", code)
		}
		got, err := c.Decode(code)
		if err != nil {
			t.Fatalf("decode %q: %v", code, err)
		}
		if got != id {
			t.Errorf("round trip: got %d, want %d", got, id)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	c, err := New("test-salt", 8)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	if _, err := c.Decode("not-a-code!"); err == nil {
		t.Error("expected error for malformed code")
	}
}

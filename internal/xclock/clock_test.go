package xclock

import "testing"

func TestFakeAdvance(t *testing.T) {
	c := NewFake()
	if c.NowMillis() != 0 {
		t.Fatalf("expected 0, got %d", c.NowMillis())
	}
	c.Advance(50)
	if c.NowMillis() != 50 {
		t.Fatalf("expected 50, got %d", c.NowMillis())
	}
	c.Set(10000)
	if c.NowMillis() != 10000 {
		t.Fatalf("expected 10000, got %d", c.NowMillis())
	}
}

func TestSystemMonotonic(t *testing.T) {
	c := NewSystem()
	first := c.NowMillis()
	second := c.NowMillis()
	if second < first {
		t.Fatalf("clock went backwards: %d -> %d", first, second)
	}
}

package protocol

import (
	"math"
	"testing"
)

func TestQFloatRoundTripWithinStep(t *testing.T) {
	const min, max = -100.0, 100.0
	const bits = 16
	maxValue := float64(maxValueForBits(bits))
	step := float32((max - min) / maxValue)

	for v := float32(min) + step; v < float32(max)-step; v += step * 37 {
		q := QuantizeFloat(v, min, max, bits)
		got := DequantizeFloat(q, min, max, bits)
		if math.Abs(float64(got-v)) > float64(step)+1e-3 {
			t.Fatalf("QFloat round trip error too large for v=%v: got=%v step=%v", v, got, step)
		}
	}
}

func TestQFloatClampsAtUpperBound(t *testing.T) {
	q := QuantizeFloat(1000, 0, 1, 8)
	if q >= maxValueForBits(8) {
		t.Fatalf("expected clamp below maxValue, got %d", q)
	}
}

func TestQFloatStreamRoundTrip(t *testing.T) {
	buf := make([]byte, 2)
	w := NewStream(buf, StreamWrite)
	if !WriteQFloat(w, 12.5, 0, 100, 16) {
		t.Fatal("WriteQFloat failed")
	}

	r := NewStream(buf, StreamRead)
	var out float32
	if !ReadQFloat(r, &out, 0, 100, 16) {
		t.Fatal("ReadQFloat failed")
	}
	if math.Abs(float64(out-12.5)) > 0.01 {
		t.Fatalf("expected ~12.5, got %v", out)
	}
}

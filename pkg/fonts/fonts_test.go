package fonts

import "testing"

func TestMeasure(t *testing.T) {
	face, err := Face(12)
	if err != nil {
		t.Fatalf("Face() error: %v", err)
	}

	short := Measure(face, "gm")
	long := Measure(face, "good morning")
	if short <= 0 {
		t.Fatalf("Measure(gm) = %v, want > 0", short)
	}
	if long <= short {
		t.Errorf("Measure(good morning) = %v, want more than %v", long, short)
	}
	if Measure(face, "") != 0 {
		t.Error("empty string should have no width")
	}
}

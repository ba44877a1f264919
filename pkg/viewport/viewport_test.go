package viewport

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/blockscape/pkg/geom"
)

var box = geom.Box{MinX: -10, MinY: 0, MaxX: 30, MaxY: 20}

func fitted() *Viewport {
	v := New(DefaultWidth, DefaultHeight)
	v.FitToBounds(box)
	return v
}

func TestFitToBounds(t *testing.T) {
	v := fitted()

	// The 10% padding exceeds the box, so clamping shrinks it back.
	if v.W != box.Width() || v.H != box.Height() {
		t.Errorf("size = %vx%v, want %vx%v", v.W, v.H, box.Width(), box.Height())
	}
	if v.X != box.MinX || v.Y != box.MinY {
		t.Errorf("origin = (%v, %v), want (%v, %v)", v.X, v.Y, box.MinX, box.MinY)
	}
	if !v.Rect.Inside(box) {
		t.Errorf("rect %+v not inside %+v", v.Rect, box)
	}
}

func TestDataToScreenCorners(t *testing.T) {
	v := fitted()

	tests := []struct {
		name           string
		px, py         float64
		wantSX, wantSY float64
	}{
		{"bottom-left", box.MinX, box.MinY, Margin, DefaultHeight - Margin},
		{"top-right", box.MaxX, box.MaxY, DefaultWidth - Margin, Margin},
		{"center", box.CenterX(), box.CenterY(), DefaultWidth / 2, DefaultHeight / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := v.DataToScreen(tt.px, tt.py)
			if !near(sx, tt.wantSX) || !near(sy, tt.wantSY) {
				t.Errorf("DataToScreen(%v, %v) = (%v, %v), want (%v, %v)", tt.px, tt.py, sx, sy, tt.wantSX, tt.wantSY)
			}
			px, py := v.ScreenToData(sx, sy)
			if !near(px, tt.px) || !near(py, tt.py) {
				t.Errorf("ScreenToData round trip = (%v, %v), want (%v, %v)", px, py, tt.px, tt.py)
			}
		})
	}
}

func TestClampIdempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	v := New(DefaultWidth, DefaultHeight)
	v.SetBounds(box)

	for i := range 500 {
		v.Rect = geom.Rect{
			X: rng.Float64()*200 - 100,
			Y: rng.Float64()*200 - 100,
			W: rng.Float64()*80 + 0.01,
			H: rng.Float64()*80 + 0.01,
		}
		v.Clamp()
		once := v.Rect
		v.Clamp()
		if v.Rect != once {
			t.Fatalf("case %d: Clamp not idempotent: %+v then %+v", i, once, v.Rect)
		}
		if !once.Inside(box) {
			t.Fatalf("case %d: %+v escapes %+v", i, once, box)
		}
		if once.W <= 0 || once.H <= 0 {
			t.Fatalf("case %d: non-positive size %+v", i, once)
		}
	}
}

func TestClampIdempotentFloatBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 17))

	for i := range 300 {
		minX, minY := rng.NormFloat64()*3, rng.NormFloat64()*3
		b := geom.Box{
			MinX: minX, MinY: minY,
			MaxX: minX + rng.Float64()*7 + 1e-3,
			MaxY: minY + rng.Float64()*7 + 1e-3,
		}
		v := New(DefaultWidth, DefaultHeight)
		v.FitToBounds(b)

		for step := range 40 {
			switch rng.IntN(3) {
			case 0:
				f := 0.9
				if rng.IntN(2) == 1 {
					f = 1.1
				}
				v.Zoom(f, rng.Float64()*DefaultWidth, rng.Float64()*DefaultHeight)
			case 1:
				v.Pan(rng.NormFloat64()*200, rng.NormFloat64()*200)
			default:
				v.FitToBounds(b)
			}

			once := v.Snapshot()
			v.Clamp()
			if v.Rect != once {
				t.Fatalf("box %d step %d: Clamp not idempotent: %+v then %+v (bounds %+v)", i, step, once, v.Rect, b)
			}
			if once.X < b.MinX || once.Y < b.MinY {
				t.Fatalf("box %d step %d: origin %+v below %+v", i, step, once, b)
			}
			if !once.Inside(b) {
				t.Fatalf("box %d step %d: %+v escapes %+v", i, step, once, b)
			}
		}
	}
}

func TestClampFullExtentPinsOrigin(t *testing.T) {
	// MaxY-H rounds one ulp below MinY for this box.
	b := geom.Box{MinX: 0, MinY: -1.6958812839433646, MaxX: 1, MaxY: 3.3}
	v := New(DefaultWidth, DefaultHeight)
	v.SetBounds(b)
	v.Rect = geom.Rect{X: 0, Y: -1.6958812839433646, W: 1, H: b.Height()}
	v.Clamp()

	if v.Y != b.MinY || v.H != b.Height() {
		t.Errorf("Clamp() = %+v, want Y=%v H=%v", v.Rect, b.MinY, b.Height())
	}
}

func TestClampPrefersShift(t *testing.T) {
	v := fitted()
	v.Rect = geom.Rect{X: 25, Y: -5, W: 10, H: 5}
	v.Clamp()

	want := geom.Rect{X: 20, Y: 0, W: 10, H: 5}
	if v.Rect != want {
		t.Errorf("Clamp() = %+v, want %+v", v.Rect, want)
	}
}

func TestZoomKeepsPivot(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))

	for i := range 200 {
		v := fitted()
		// Zoom in a few times first so zoom-out has room before clamping.
		v.Zoom(0.5, DefaultWidth/2, DefaultHeight/2)
		v.Zoom(0.5, DefaultWidth/2, DefaultHeight/2)

		sx := Margin + rng.Float64()*(DefaultWidth-2*Margin)
		sy := Margin + rng.Float64()*(DefaultHeight-2*Margin)
		factor := 0.9
		if i%2 == 1 {
			factor = 1.1
		}

		bx, by := v.ScreenToData(sx, sy)
		pixelX, pixelY := 1/v.ScaleX(), 1/v.ScaleY()
		v.Zoom(factor, sx, sy)
		ax, ay := v.ScreenToData(sx, sy)

		if math.Abs(ax-bx) >= pixelX || math.Abs(ay-by) >= pixelY {
			t.Fatalf("case %d: pivot drifted from (%v, %v) to (%v, %v)", i, bx, by, ax, ay)
		}
	}
}

func TestZoomOutClamps(t *testing.T) {
	v := fitted()
	for range 10 {
		v.Zoom(1.1, 60, 60)
	}
	if v.W != box.Width() || v.H != box.Height() {
		t.Errorf("zoom out grew past bounds: %+v", v.Rect)
	}
	if !v.Rect.Inside(box) {
		t.Errorf("rect %+v escapes %+v", v.Rect, box)
	}
}

func TestPan(t *testing.T) {
	v := fitted()
	v.Zoom(0.5, DefaultWidth/2, DefaultHeight/2)
	start := v.Rect

	// Drag right and down by 70 px.
	v.Pan(70, 70)
	wantX := start.X - 70/v.ScaleX()
	wantY := start.Y + 70/v.ScaleY()
	if !near(v.X, wantX) || !near(v.Y, wantY) {
		t.Errorf("Pan() origin = (%v, %v), want (%v, %v)", v.X, v.Y, wantX, wantY)
	}

	// A huge drag pins the view against the box.
	v.Pan(1e6, -1e6)
	if v.X != box.MinX || !near(v.Y, box.MinY) {
		t.Errorf("Pan() past edge = (%v, %v), want (%v, %v)", v.X, v.Y, box.MinX, box.MinY)
	}
	if v.W != start.W || v.H != start.H {
		t.Errorf("Pan() changed size: %+v", v.Rect)
	}
}

func TestDegenerateBounds(t *testing.T) {
	v := New(DefaultWidth, DefaultHeight)
	v.FitToBounds(geom.BoxAround(4, 4))

	if v.W <= 0 || v.H <= 0 {
		t.Fatalf("degenerate fit gave size %vx%v", v.W, v.H)
	}
	sx, sy := v.DataToScreen(4, 4)
	if !near(sx, DefaultWidth/2) || !near(sy, DefaultHeight/2) {
		t.Errorf("single point drawn at (%v, %v), want canvas center", sx, sy)
	}
}

func TestRestore(t *testing.T) {
	v := fitted()
	snap := v.Snapshot()
	v.Zoom(0.25, 300, 200)
	v.Restore(snap)
	if v.Rect != snap {
		t.Errorf("Restore() = %+v, want %+v", v.Rect, snap)
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9*(1+math.Abs(b)) }

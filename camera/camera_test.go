package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 0.01 }

func TestNew(t *testing.T) {
	cam := New(1280, 720, 1280, 720)

	if cam.X != 640 || cam.Y != 360 {
		t.Errorf("expected camera at (640, 360), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected fit zoom 1.0, got %f", cam.Zoom)
	}
}

func TestFitZoomLimitingDimension(t *testing.T) {
	// Width limits: 800/1600 = 0.5 < 600/800 = 0.75.
	cam := New(800, 600, 1600, 800)
	if !near(cam.FitZoom, 0.5) {
		t.Fatalf("expected FitZoom 0.5, got %f", cam.FitZoom)
	}

	// Whole grid visible at fit zoom.
	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if minX > 0.01 || maxX < 1599.99 || minY > 0 || maxY < 800 {
		t.Errorf("grid not fully visible: (%f,%f)-(%f,%f)", minX, minY, maxX, maxY)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	sx, sy := cam.WorldToScreen(1280, 720)
	if !near(sx, 640) || !near(sy, 360) {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(1.7)
	cam.Pan(100, -40)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},
		{100, 100},
		{1200, 600},
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanClampsToGrid(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.Pan(-1e6, 1e6)
	if cam.X != 0 || cam.Y != 1440 {
		t.Errorf("expected centre clamped to (0, 1440), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	cam.SetZoom(0.01)
	if cam.Zoom != cam.MinZoom || !near(cam.MinZoom, 0.25) {
		t.Errorf("expected zoom clamped to 0.25, got %f", cam.Zoom)
	}

	cam.SetZoom(100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}
}

func TestZoomAtKeepsCursorPoint(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	wx, wy := cam.ScreenToWorld(900, 200)

	cam.ZoomAt(2, 900, 200)

	gx, gy := cam.ScreenToWorld(900, 200)
	if !near(gx, wx) || !near(gy, wy) {
		t.Errorf("point under cursor moved: (%f,%f) -> (%f,%f)", wx, wy, gx, gy)
	}
	if !near(cam.Zoom, 1.0) {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(1)

	// Visible range: (640, 360) to (1920, 1080).
	if !cam.IsVisible(1280, 720, 10) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(2400, 1300, 10) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(600, 720, 100) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestResizeKeepsZoomInRange(t *testing.T) {
	cam := New(1280, 720, 1280, 720)
	cam.SetZoom(cam.MinZoom)
	cam.Resize(2560, 1440)
	if cam.Zoom < cam.MinZoom {
		t.Errorf("zoom %f below new minimum %f", cam.Zoom, cam.MinZoom)
	}
	if !near(cam.FitZoom, 2) {
		t.Errorf("expected FitZoom 2, got %f", cam.FitZoom)
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.X = 500
	cam.Y = 500
	cam.Zoom = 2.5

	cam.Reset()

	if cam.X != 1280 || cam.Y != 720 {
		t.Errorf("expected position (1280, 720), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != cam.FitZoom {
		t.Errorf("expected zoom %f, got %f", cam.FitZoom, cam.Zoom)
	}
}

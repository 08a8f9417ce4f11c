// Package viewer draws a running swarm with raylib: the field, robots, goals
// and toggleable overlays, plus a small raygui control panel.
package viewer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/camera"
	"github.com/pthm-cable/swarm/inspector"
	"github.com/pthm-cable/swarm/sim"
)

// Action is a request from the control panel for the caller to act on.
type Action int

const (
	ActionNone Action = iota
	ActionToggleRun
	ActionStep
)

const panelWidth = 180

var (
	robotColor = rl.Color{R: 120, G: 220, B: 255, A: 255}
	goalColor  = rl.Color{R: 255, G: 80, B: 80, A: 255}
	startColor = rl.Color{R: 120, G: 255, B: 120, A: 200}
	linkColor  = rl.Color{R: 255, G: 255, B: 255, A: 70}
	commColor  = rl.Color{R: 255, G: 255, B: 255, A: 40}
	sensColor  = rl.Color{R: 120, G: 220, B: 255, A: 90}
	distColor  = rl.Color{R: 255, G: 160, B: 40, A: 220}
)

// Options describe the swarm being viewed.
type Options struct {
	SensorRadius  float64
	CommRadius    float64
	MaxStepLength float64 // full scale of the inspector speed bar
	Robots        int
}

// Viewer renders frames. It must be created, used and unloaded on the
// goroutine that owns the raylib window.
type Viewer struct {
	cam       *camera.Camera
	overlays  *OverlayRegistry
	field     *fieldLayer
	inspector *inspector.Inspector

	sensorRadius float32
	commRadius   float32
}

// New creates a viewer sized to the current window. first supplies the
// field, which never changes after the environment is sealed.
func New(first sim.Frame, opts Options) *Viewer {
	w := rl.GetScreenWidth()
	h := rl.GetScreenHeight()
	return &Viewer{
		cam:          camera.New(float32(w), float32(h), float32(first.Cols), float32(first.Rows)),
		overlays:     NewOverlayRegistry(),
		field:        newFieldLayer(first.Rows, first.Cols, first.Cells),
		inspector:    inspector.NewInspector(int32(w), int32(h), opts.MaxStepLength, opts.Robots-1),
		sensorRadius: float32(opts.SensorRadius),
		commRadius:   float32(opts.CommRadius),
	}
}

// Overlays exposes the overlay registry.
func (v *Viewer) Overlays() *OverlayRegistry { return v.overlays }

// Update processes keyboard and mouse input for the camera, overlays and
// robot selection.
func (v *Viewer) Update(f sim.Frame) {
	if rl.IsWindowResized() {
		w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
		v.cam.Resize(float32(w), float32(h))
		v.inspector.Resize(int32(w), int32(h))
	}
	v.overlays.handleKeys()
	v.inspector.HandleInput(f.Robots, v.cam.ScreenToWorld, float64(max(2, 10/v.cam.Zoom)))

	panSpeed := float32(8.0)
	if rl.IsKeyDown(rl.KeyRight) {
		v.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.cam.Pan(0, -panSpeed)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.cam.Pan(-d.X, -d.Y)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		m := rl.GetMousePosition()
		v.cam.ZoomAt(1+wheel*0.1, m.X, m.Y)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
	}
}

// Draw renders one frame and returns what the control panel asked for.
// Space toggles running and N steps once, same as the buttons.
func (v *Viewer) Draw(f sim.Frame, hud HUDData) Action {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(rl.Black)

	v.field.draw(v)
	if v.overlays.IsEnabled(OverlayDisturbances) {
		v.drawDisturbances(f)
	}
	if v.overlays.IsEnabled(OverlayStarts) {
		for _, s := range f.Starts {
			sx, sy := v.cam.WorldToScreen(float32(s.X)+0.5, float32(s.Y)+0.5)
			rl.DrawRectangleLines(int32(sx)-4, int32(sy)-4, 8, 8, startColor)
		}
	}
	for _, g := range f.Goals {
		sx, sy := v.cam.WorldToScreen(float32(g.X)+0.5, float32(g.Y)+0.5)
		rl.DrawCircleLines(int32(sx), int32(sy), 6, goalColor)
		rl.DrawCircle(int32(sx), int32(sy), 2, goalColor)
	}
	if v.overlays.IsEnabled(OverlayLinks) {
		v.drawLinks(f)
	}
	v.inspector.DrawSelectionHighlight(f, v.cam.WorldToScreen, v.cam.Zoom, v.sensorRadius)
	v.drawRobots(f)

	drawHUD(hud)
	v.inspector.Draw(f)
	drawControls(int32(rl.GetScreenHeight()),
		"[Space] Run/Pause  [N] Step  [Arrows/RMB] Pan  [Wheel/+/-] Zoom  [Home] Reset  [Click] Inspect  [S/C/L/D/V/T] Overlays")

	action := v.drawPanel(hud.Running)
	if rl.IsKeyPressed(rl.KeySpace) {
		action = ActionToggleRun
	}
	if rl.IsKeyPressed(rl.KeyN) {
		action = ActionStep
	}
	return action
}

func (v *Viewer) drawRobots(f sim.Frame) {
	zoom := v.cam.Zoom
	radius := max(3, zoom*0.5)
	for _, r := range f.Robots {
		x, y := float32(r.Position.X), float32(r.Position.Y)
		if !v.cam.IsVisible(x, y, max(v.sensorRadius, v.commRadius)) {
			continue
		}
		sx, sy := v.cam.WorldToScreen(x, y)
		if v.overlays.IsEnabled(OverlaySensor) {
			rl.DrawCircleLines(int32(sx), int32(sy), v.sensorRadius*zoom, sensColor)
		}
		if v.overlays.IsEnabled(OverlayComm) {
			rl.DrawCircleLines(int32(sx), int32(sy), v.commRadius*zoom, commColor)
		}
		rl.DrawCircle(int32(sx), int32(sy), radius, robotColor)
		if v.overlays.IsEnabled(OverlayVelocity) {
			ex, ey := v.cam.WorldToScreen(x+float32(r.Velocity.X), y+float32(r.Velocity.Y))
			rl.DrawLine(int32(sx), int32(sy), int32(ex), int32(ey), rl.White)
		}
	}
}

// drawLinks joins every pair of robots within communication range.
func (v *Viewer) drawLinks(f sim.Frame) {
	limit := float64(v.commRadius) * float64(v.commRadius)
	for i := range f.Robots {
		a := f.Robots[i].Position
		ax, ay := v.cam.WorldToScreen(float32(a.X), float32(a.Y))
		for j := i + 1; j < len(f.Robots); j++ {
			b := f.Robots[j].Position
			if a.DistSq(b) > limit {
				continue
			}
			bx, by := v.cam.WorldToScreen(float32(b.X), float32(b.Y))
			rl.DrawLine(int32(ax), int32(ay), int32(bx), int32(by), linkColor)
		}
	}
}

func (v *Viewer) drawDisturbances(f sim.Frame) {
	for idx, dir := range f.Disturbances {
		x := float32(idx%f.Cols) + 0.5
		y := float32(idx/f.Cols) + 0.5
		if !v.cam.IsVisible(x, y, 4) {
			continue
		}
		sx, sy := v.cam.WorldToScreen(x, y)
		ex, ey := v.cam.WorldToScreen(x+float32(dir.DX), y+float32(dir.DY))
		rl.DrawLineEx(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, 1.5, distColor)
		rl.DrawCircle(int32(sx), int32(sy), 1.5, distColor)
	}
}

func (v *Viewer) drawPanel(running bool) Action {
	panelX := float32(rl.GetScreenWidth()) - panelWidth - 10
	y := float32(10)
	action := ActionNone

	label := "Run"
	if running {
		label = "Pause"
	}
	if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: panelWidth/2 - 4, Height: 24}, label) {
		action = ActionToggleRun
	}
	if gui.Button(rl.Rectangle{X: panelX + panelWidth/2, Y: y, Width: panelWidth / 2, Height: 24}, "Step") {
		action = ActionStep
	}
	y += 34

	for _, desc := range v.overlays.All() {
		text := fmt.Sprintf("[%s] %s", desc.KeyLabel, desc.Name)
		if v.overlays.IsEnabled(desc.ID) {
			text += " *"
		}
		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: panelWidth, Height: 22}, text) {
			v.overlays.Toggle(desc.ID)
		}
		y += 26
	}

	y += 8
	rl.DrawText("Zoom", int32(panelX), int32(y), 14, rl.Gray)
	y += 18
	zoom := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: y, Width: panelWidth - 50, Height: 18},
		"", fmt.Sprintf("%.2f", v.cam.Zoom),
		v.cam.Zoom, v.cam.MinZoom, v.cam.MaxZoom,
	)
	if zoom != v.cam.Zoom {
		v.cam.SetZoom(zoom)
	}
	return action
}

// Unload releases GPU resources.
func (v *Viewer) Unload() {
	v.field.unload()
}

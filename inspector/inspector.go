// Package inspector shows the published state of one selected robot in a
// side panel. Fields are laid out from `inspect` struct tags.
package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/robot"
	"github.com/pthm-cable/swarm/sim"
)

// Panel dimensions
const (
	PanelWidth   = 280
	PanelPadding = 10
	HeaderHeight = 30
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
)

// RobotView is the panel content for one robot.
type RobotView struct {
	X          float64 `inspect:"label,fmt:%.1f"`
	Y          float64 `inspect:"label,fmt:%.1f"`
	Speed      float64 `inspect:"bar"`
	Heading    float64 `inspect:"angle"`
	GoalDist   float64 `inspect:"label,fmt:%.1f"`
	Cycle      uint64
	Neighbors  int     `inspect:"bar"`
	Coverage   float64 `inspect:"bar,max:1"`
	Disturbed  int
	Degenerate uint64
}

// NewRobotView builds a view of s. cells is the grid size used for
// coverage; GoalDist is left for the caller.
func NewRobotView(s robot.State, cells int) RobotView {
	v := RobotView{
		X:          s.Position.X,
		Y:          s.Position.Y,
		Speed:      s.Velocity.Speed(),
		Heading:    math.Atan2(s.Velocity.Y, s.Velocity.X),
		Cycle:      s.Cycle,
		Neighbors:  s.Neighbors,
		Disturbed:  s.DisturbancesHit,
		Degenerate: s.Degenerate,
	}
	if cells > 0 {
		v.Coverage = float64(s.KnownCells) / float64(cells)
	}
	return v
}

// Inspector manages robot selection and panel rendering.
type Inspector struct {
	selected    int
	hasSelected bool
	panelX      int32
	panelY      int32

	maxSpeed     float32
	maxNeighbors float32
}

// NewInspector creates an inspector. maxSpeed and maxNeighbors are the full
// scale of the speed and neighbor bars.
func NewInspector(screenWidth, screenHeight int32, maxSpeed float64, maxNeighbors int) *Inspector {
	ins := &Inspector{
		maxSpeed:     float32(maxSpeed),
		maxNeighbors: float32(max(1, maxNeighbors)),
	}
	ins.Resize(screenWidth, screenHeight)
	return ins
}

// Resize moves the panel to the bottom right of the screen.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.panelX = screenWidth - PanelWidth - 10
	ins.panelY = screenHeight - panelHeight - 40
}

// Pick returns the id of the robot nearest to (wx, wy) within radius grid
// units.
func Pick(robots []robot.State, wx, wy, radius float64) (int, bool) {
	best, found := radius*radius, false
	id := 0
	for _, r := range robots {
		dx := r.Position.X - wx
		dy := r.Position.Y - wy
		if d := dx*dx + dy*dy; d <= best {
			best, id, found = d, r.ID, true
		}
	}
	return id, found
}

// HandleInput selects on left click and deselects on Escape or a click on
// the close button. toWorld converts screen to grid coordinates and
// pickRadius is in grid units.
func (ins *Inspector) HandleInput(robots []robot.State, toWorld func(sx, sy float32) (float32, float32), pickRadius float64) {
	if rl.IsKeyPressed(rl.KeyEscape) {
		ins.Deselect()
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	m := rl.GetMousePosition()
	mx, my := int32(m.X), int32(m.Y)
	if ins.hasSelected {
		closeX := ins.panelX + PanelWidth - 25
		closeY := ins.panelY + 5
		if mx >= closeX && mx <= closeX+20 && my >= closeY && my <= closeY+20 {
			ins.Deselect()
			return
		}
		if mx >= ins.panelX && mx <= ins.panelX+PanelWidth && my >= ins.panelY {
			return
		}
	}

	wx, wy := toWorld(m.X, m.Y)
	if id, ok := Pick(robots, float64(wx), float64(wy), pickRadius); ok {
		ins.selected = id
		ins.hasSelected = true
	}
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the selected robot id.
func (ins *Inspector) Selected() (int, bool) {
	return ins.selected, ins.hasSelected
}

// selectedState finds the selected robot in f.
func (ins *Inspector) selectedState(f sim.Frame) (robot.State, bool) {
	if !ins.hasSelected {
		return robot.State{}, false
	}
	for _, r := range f.Robots {
		if r.ID == ins.selected {
			return r, true
		}
	}
	return robot.State{}, false
}

// header, id line, nine text or bar fields and one angle widget
const panelHeight = HeaderHeight + PanelPadding + 22 + 8 + 9*20 + 44 + PanelPadding

// Draw renders the panel for the selected robot, if any.
func (ins *Inspector) Draw(f sim.Frame) {
	s, ok := ins.selectedState(f)
	if !ok {
		return
	}

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: panelHeight},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("ROBOT", ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	y := ins.panelY + HeaderHeight + PanelPadding
	x := ins.panelX + PanelPadding
	rl.DrawText(fmt.Sprintf("ID: %d", s.ID), x, y, 14, ColorHeaderText)
	y += 22
	rl.DrawLine(x, y, ins.panelX+PanelWidth-PanelPadding, y, ColorPanelBorder)
	y += 8

	view := NewRobotView(s, f.Rows*f.Cols)
	view.GoalDist = sim.NearestGoal(s.Position, f.Goals)
	for _, field := range ExtractFields(view) {
		switch field.Name {
		case "Speed":
			field.Options["max"] = fmt.Sprint(ins.maxSpeed)
		case "Neighbors":
			field.Options["max"] = fmt.Sprint(ins.maxNeighbors)
		}
		y += DrawField(x, y, field)
	}
}

// DrawSelectionHighlight rings the selected robot and draws its sensor disk.
func (ins *Inspector) DrawSelectionHighlight(f sim.Frame, toScreen func(wx, wy float32) (float32, float32), zoom, sensorRadius float32) {
	s, ok := ins.selectedState(f)
	if !ok {
		return
	}
	sx, sy := toScreen(float32(s.Position.X), float32(s.Position.Y))
	rl.DrawCircleLines(int32(sx), int32(sy), max(8, zoom*1.5), rl.Yellow)
	rl.DrawCircle(int32(sx), int32(sy), sensorRadius*zoom, rl.Color{R: 255, G: 255, B: 0, A: 25})
}

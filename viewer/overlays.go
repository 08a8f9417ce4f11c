package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlaySensor       OverlayID = "sensor"
	OverlayComm         OverlayID = "comm"
	OverlayLinks        OverlayID = "links"
	OverlayDisturbances OverlayID = "disturbances"
	OverlayVelocity     OverlayID = "velocity"
	OverlayStarts       OverlayID = "starts"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID        OverlayID   // Unique identifier
	Name      string      // Button label
	Key       int32       // Keyboard key to toggle (0 = no key)
	KeyLabel  string      // Key label for display (e.g., "S", "V")
	Exclusive []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{ID: OverlaySensor, Name: "Sensor", Key: rl.KeyS, KeyLabel: "S"})
	r.Register(OverlayDescriptor{
		ID:        OverlayComm,
		Name:      "Comm range",
		Key:       rl.KeyC,
		KeyLabel:  "C",
		Exclusive: []OverlayID{OverlayLinks},
	})
	r.Register(OverlayDescriptor{
		ID:        OverlayLinks,
		Name:      "Links",
		Key:       rl.KeyL,
		KeyLabel:  "L",
		Exclusive: []OverlayID{OverlayComm},
	})
	r.Register(OverlayDescriptor{ID: OverlayDisturbances, Name: "Disturbances", Key: rl.KeyD, KeyLabel: "D"})
	r.Register(OverlayDescriptor{ID: OverlayVelocity, Name: "Velocity", Key: rl.KeyV, KeyLabel: "V"})
	r.Register(OverlayDescriptor{ID: OverlayStarts, Name: "Starts", Key: rl.KeyT, KeyLabel: "T"})

	r.SetEnabled(OverlayDisturbances, true)
	r.SetEnabled(OverlayLinks, true)
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	next := !r.enabled[id]
	r.SetEnabled(id, next)
	return next
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// handleKeys toggles every overlay whose key was pressed this frame.
func (r *OverlayRegistry) handleKeys() {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			r.Toggle(desc.ID)
		}
	}
}

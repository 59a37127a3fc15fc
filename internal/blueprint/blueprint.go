package blueprint

import (
	"time"

	"github.com/ivlev/script2video/internal/style"
)

// ElementType identifies the visual primitive a scene element renders as.
type ElementType string

const (
	TypeBox       ElementType = "box"
	TypeCircle    ElementType = "circle"
	TypeArrow     ElementType = "arrow"
	TypeLine      ElementType = "line"
	TypeTextLabel ElementType = "text_label"
	TypeIcon      ElementType = "icon"
)

// Role describes the semantic function of an element within a scene.
type Role string

const (
	RoleActor      Role = "actor"
	RoleDataFlow   Role = "data_flow"
	RoleAnnotation Role = "annotation"
)

// Position is a top-left coordinate in canvas units.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Size is an element extent in canvas units.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// VisualElement is a single drawable primitive within a scene.
// The synthesizer creates it, the layout engine fills Position/Size,
// and the timing allocator attaches animation instructions by ID.
type VisualElement struct {
	ID       string      `json:"element_id" yaml:"element_id"`
	Type     ElementType `json:"type" yaml:"type"`
	Role     Role        `json:"role" yaml:"role"`
	Label    string      `json:"label" yaml:"label"`
	Position Position    `json:"position" yaml:"position"`
	Size     Size        `json:"size" yaml:"size"`
	Color    string      `json:"color" yaml:"color"`

	// From/To reference other element IDs in the same scene.
	// Only arrow and line elements carry them.
	From string `json:"from,omitempty" yaml:"from,omitempty"`
	To   string `json:"to,omitempty" yaml:"to,omitempty"`

	// Degraded marks an element placed with a relaxed overlap invariant.
	Degraded bool `json:"degraded,omitempty" yaml:"degraded,omitempty"`
}

// Center returns the midpoint of the element's bounding box.
func (e *VisualElement) Center() Position {
	return Position{
		X: e.Position.X + e.Size.Width/2,
		Y: e.Position.Y + e.Size.Height/2,
	}
}

// IsConnector reports whether the element is a path between two endpoints
// rather than a placed shape.
func (e *VisualElement) IsConnector() bool {
	return e.Type == TypeArrow || e.Type == TypeLine
}

// AnimationInstruction schedules one animation for one element.
// Start is relative to the scene start, in seconds.
type AnimationInstruction struct {
	ElementID string  `json:"element_id" yaml:"element_id"`
	Kind      string  `json:"animation_type" yaml:"animation_type"`
	Start     float64 `json:"start_time" yaml:"start_time"`
	Duration  float64 `json:"duration" yaml:"duration"`
	Easing    string  `json:"easing" yaml:"easing"`
}

// End returns the instruction's finish time relative to the scene start.
func (a *AnimationInstruction) End() float64 {
	return a.Start + a.Duration
}

// Transition describes how one scene hands over to the next.
type Transition struct {
	Kind     string  `json:"type" yaml:"type"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// CompiledScene is one fully specified scene of the blueprint.
type CompiledScene struct {
	ID                int                    `json:"scene_id" yaml:"scene_id"`
	StartTime         float64                `json:"start_time" yaml:"start_time"`
	Duration          float64                `json:"duration" yaml:"duration"`
	Narration         string                 `json:"narration" yaml:"narration"`
	VisualDescription string                 `json:"visual_description" yaml:"visual_description"`
	Background        string                 `json:"background" yaml:"background"`
	Elements          []VisualElement        `json:"elements" yaml:"elements"`
	Animations        []AnimationInstruction `json:"animations" yaml:"animations"`
	// Transition leads into the next scene. The final scene has none.
	Transition *Transition `json:"transition,omitempty" yaml:"transition,omitempty"`
}

// DegradedCount returns how many elements were placed with a relaxed invariant.
func (s *CompiledScene) DegradedCount() int {
	n := 0
	for i := range s.Elements {
		if s.Elements[i].Degraded {
			n++
		}
	}
	return n
}

// Blueprint is the render-ready output document consumed by the
// rendering/compositing stage. It is never mutated after assembly.
type Blueprint struct {
	ID            string             `json:"blueprint_id" yaml:"blueprint_id"`
	Topic         string             `json:"topic" yaml:"topic"`
	TotalDuration float64            `json:"total_duration" yaml:"total_duration"`
	Style         style.StyleProfile `json:"style_profile" yaml:"style_profile"`
	GeneratedAt   time.Time          `json:"generated_at" yaml:"generated_at"`
	Scenes        []CompiledScene    `json:"scenes" yaml:"scenes"`
}

// Canvas describes the drawable area every scene is laid out on.
// Margin is a safety band no element may enter.
type Canvas struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Margin float64 `yaml:"margin"`
}

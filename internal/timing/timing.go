package timing

import (
	"math"

	"github.com/ivlev/script2video/internal/blueprint"
	"github.com/ivlev/script2video/internal/style"
)

const (
	// baseEntranceDuration is the unscaled duration of one entrance.
	baseEntranceDuration = 0.5
	// baseStagger is the unscaled gap between consecutive entrances.
	baseStagger = 0.3
	// baseExitDuration is the unscaled fade-out before a transition.
	baseExitDuration = 0.3
	// drawSpeed is how many canvas units per second an arrow draws at.
	drawSpeed = 400.0
	// minDrawDuration and maxDrawDuration bound the path-length scaling.
	minDrawDuration = 0.3
	maxDrawDuration = 2.5
	// transition durations are clamped into this range.
	minTransitionDuration = 0.1
	maxTransitionDuration = 1.0
)

// Allocator assigns animation timing within one scene and schedules the
// transition out of it. All decisions are pure functions of the element
// list, the scene duration and the style profile.
type Allocator struct {
	style *style.StyleProfile
}

// New creates an Allocator bound to a resolved style profile.
func New(profile *style.StyleProfile) *Allocator {
	return &Allocator{style: profile}
}

// Schedule produces one entrance instruction per element, staggered in
// declaration order with no entrance starting after the scene midpoint,
// plus one exit per element when the scene leads into a non-cut
// transition. If the naive schedule overruns the scene duration, every
// start and duration is scaled by a single factor so the last
// instruction ends exactly at the scene end, preserving relative order.
//
// The returned transition is nil for the final scene.
func (a *Allocator) Schedule(elements []blueprint.VisualElement, sceneDuration float64, lastScene bool) ([]blueprint.AnimationInstruction, *blueprint.Transition) {
	transition := a.transition(lastScene)

	n := len(elements)
	if n == 0 {
		return nil, transition
	}

	speed := a.style.Animation.SpeedMultiplier
	stagger := baseStagger / speed

	// Entrances never start past the narration midpoint.
	if n > 1 {
		maxStagger := (sceneDuration / 2) / float64(n-1)
		stagger = math.Min(stagger, maxStagger)
	}

	instructions := make([]blueprint.AnimationInstruction, 0, 2*n)
	for i := range elements {
		el := &elements[i]
		kind := a.style.Animation.Entrance
		duration := baseEntranceDuration / speed
		easing := "ease_in_out"

		if el.IsConnector() {
			// Longer paths draw proportionally longer, up to a cap.
			kind = "draw"
			length := math.Hypot(el.Size.Width, el.Size.Height)
			duration = clamp(length/drawSpeed, minDrawDuration, maxDrawDuration) / speed
			easing = "ease_out"
		}

		instructions = append(instructions, blueprint.AnimationInstruction{
			ElementID: el.ID,
			Kind:      kind,
			Start:     float64(i) * stagger,
			Duration:  duration,
			Easing:    easing,
		})
	}

	if transition != nil && transition.Kind != "cut" {
		exitDur := baseExitDuration / speed
		if exitDur > sceneDuration/2 {
			exitDur = sceneDuration / 2
		}
		for i := range elements {
			instructions = append(instructions, blueprint.AnimationInstruction{
				ElementID: elements[i].ID,
				Kind:      "fade_out",
				Start:     sceneDuration - exitDur,
				Duration:  exitDur,
				Easing:    "ease_in",
			})
		}
	}

	rescale(instructions, sceneDuration)
	return instructions, transition
}

// rescale applies one proportional factor to every start and duration
// so the schedule fits the scene exactly. A schedule that already fits
// is left untouched.
func rescale(instructions []blueprint.AnimationInstruction, sceneDuration float64) {
	end := 0.0
	for i := range instructions {
		if e := instructions[i].End(); e > end {
			end = e
		}
	}
	if end <= sceneDuration || end == 0 {
		return
	}
	factor := sceneDuration / end
	for i := range instructions {
		instructions[i].Start *= factor
		instructions[i].Duration *= factor
	}
}

// transitionPresets maps the style transition-speed preference to a
// duration, after the original profile's smooth/snappy/professional
// presets.
var transitionPresets = map[string]struct {
	kind     string
	duration float64
}{
	"smooth":       {"fade", 0.5},
	"snappy":       {"cut", 0.1},
	"professional": {"fade", 0.3},
}

// transition builds the outgoing transition for a scene boundary,
// honouring the style's preferred kind and clamping the duration into
// the configured range.
func (a *Allocator) transition(lastScene bool) *blueprint.Transition {
	if lastScene {
		return nil
	}

	preset, ok := transitionPresets[a.style.Animation.TransitionSpeed]
	if !ok {
		preset = transitionPresets["smooth"]
	}

	kind := a.style.Animation.Transition
	if kind == "" {
		kind = preset.kind
	}
	if preset.kind == "cut" {
		kind = "cut"
	}

	return &blueprint.Transition{
		Kind:     kind,
		Duration: clamp(preset.duration/a.style.Animation.SpeedMultiplier, minTransitionDuration, maxTransitionDuration),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

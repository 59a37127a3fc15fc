package blueprint

import "fmt"

// Invariant names reported by validation failures.
const (
	InvariantSceneContiguity = "scene_contiguity"
	InvariantAnimationRef    = "animation_element_ref"
	InvariantEndpointRef     = "endpoint_ref"
	InvariantContainment     = "containment"
	InvariantOverlap         = "overlap"
	InvariantTimingBound     = "timing_bound"
)

// ValidationError is a fatal structural defect found at assembly time.
// It indicates a bug in an upstream stage and is never patched silently.
type ValidationError struct {
	SceneID   int
	Invariant string
	Detail    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("blueprint validation failed: scene %d violates %s: %s", e.SceneID, e.Invariant, e.Detail)
}

// Constraints are the tolerances the cross-referential invariants are
// checked against.
type Constraints struct {
	// OverlapEpsilon is the tolerated overlap area between two
	// non-connector elements not flagged as degraded.
	OverlapEpsilon float64
	// OverrunTolerance is how far past the scene duration an animation
	// may end.
	OverrunTolerance float64
}

// Validate checks every cross-referential invariant of the document:
// contiguous scene indices, resolvable element and endpoint references,
// canvas containment, bounded overlap and the per-scene timing bound.
// The first violation is returned as a *ValidationError.
func (b *Blueprint) Validate(canvas Canvas, c Constraints) error {
	for i := range b.Scenes {
		scene := &b.Scenes[i]
		if scene.ID != i+1 {
			return &ValidationError{
				SceneID:   scene.ID,
				Invariant: InvariantSceneContiguity,
				Detail:    fmt.Sprintf("expected scene id %d at position %d", i+1, i),
			}
		}
		if err := validateScene(scene, canvas, c); err != nil {
			return err
		}
	}
	return nil
}

func validateScene(scene *CompiledScene, canvas Canvas, c Constraints) error {
	ids := make(map[string]*VisualElement, len(scene.Elements))
	for i := range scene.Elements {
		ids[scene.Elements[i].ID] = &scene.Elements[i]
	}

	for i := range scene.Elements {
		el := &scene.Elements[i]

		if el.IsConnector() {
			if _, ok := ids[el.From]; !ok {
				return &ValidationError{
					SceneID:   scene.ID,
					Invariant: InvariantEndpointRef,
					Detail:    fmt.Sprintf("element %s: source endpoint %q does not resolve", el.ID, el.From),
				}
			}
			if _, ok := ids[el.To]; !ok {
				return &ValidationError{
					SceneID:   scene.ID,
					Invariant: InvariantEndpointRef,
					Detail:    fmt.Sprintf("element %s: target endpoint %q does not resolve", el.ID, el.To),
				}
			}
		}

		if el.Position.X < 0 || el.Position.Y < 0 ||
			el.Position.X+el.Size.Width > canvas.Width-canvas.Margin ||
			el.Position.Y+el.Size.Height > canvas.Height-canvas.Margin {
			return &ValidationError{
				SceneID:   scene.ID,
				Invariant: InvariantContainment,
				Detail:    fmt.Sprintf("element %s extends outside the canvas safety margin", el.ID),
			}
		}
	}

	for i := range scene.Elements {
		for j := i + 1; j < len(scene.Elements); j++ {
			a, b := &scene.Elements[i], &scene.Elements[j]
			if a.IsConnector() || b.IsConnector() || a.Degraded || b.Degraded {
				continue
			}
			if area := intersectionArea(a, b); area > c.OverlapEpsilon {
				return &ValidationError{
					SceneID:   scene.ID,
					Invariant: InvariantOverlap,
					Detail:    fmt.Sprintf("elements %s and %s overlap by %.1f", a.ID, b.ID, area),
				}
			}
		}
	}

	for i := range scene.Animations {
		anim := &scene.Animations[i]
		if _, ok := ids[anim.ElementID]; !ok {
			return &ValidationError{
				SceneID:   scene.ID,
				Invariant: InvariantAnimationRef,
				Detail:    fmt.Sprintf("animation %q references missing element %q", anim.Kind, anim.ElementID),
			}
		}
		if anim.End() > scene.Duration+c.OverrunTolerance {
			return &ValidationError{
				SceneID:   scene.ID,
				Invariant: InvariantTimingBound,
				Detail: fmt.Sprintf("animation on %s ends at %.3fs, past the %.3fs scene duration",
					anim.ElementID, anim.End(), scene.Duration),
			}
		}
	}

	return nil
}

func intersectionArea(a, b *VisualElement) float64 {
	w := min(a.Position.X+a.Size.Width, b.Position.X+b.Size.Width) - max(a.Position.X, b.Position.X)
	h := min(a.Position.Y+a.Size.Height, b.Position.Y+b.Size.Height) - max(a.Position.Y, b.Position.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

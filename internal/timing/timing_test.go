package timing

import (
	"math"
	"testing"

	"github.com/ivlev/script2video/internal/blueprint"
	"github.com/ivlev/script2video/internal/style"
)

func actorElements(n int) []blueprint.VisualElement {
	elements := make([]blueprint.VisualElement, n)
	for i := range elements {
		elements[i] = blueprint.VisualElement{
			ID:   string(rune('a' + i)),
			Type: blueprint.TypeBox,
			Role: blueprint.RoleActor,
			Size: blueprint.Size{Width: 100, Height: 80},
		}
	}
	return elements
}

func TestStaggeredEntrances(t *testing.T) {
	profile := style.Default()
	alloc := New(&profile)

	instructions, transition := alloc.Schedule(actorElements(4), 10.0, true)
	if transition != nil {
		t.Error("Final scene must have no outgoing transition")
	}

	if len(instructions) != 4 {
		t.Fatalf("Expected 4 entrance instructions, got %d", len(instructions))
	}

	for i := 1; i < len(instructions); i++ {
		if instructions[i].Start <= instructions[i-1].Start {
			t.Errorf("Entrance %d starts at %.2f, not after %.2f", i, instructions[i].Start, instructions[i-1].Start)
		}
	}
	for _, in := range instructions {
		if in.Start > 5.0 {
			t.Errorf("Entrance starts past the narration midpoint: %.2f", in.Start)
		}
		if in.Kind != "fade_in" {
			t.Errorf("Expected fade_in entrance, got %s", in.Kind)
		}
		if in.Duration <= 0 {
			t.Errorf("Duration must be positive, got %f", in.Duration)
		}
	}
}

func TestMidpointClampWithManyElements(t *testing.T) {
	profile := style.Default()
	alloc := New(&profile)

	instructions, _ := alloc.Schedule(actorElements(30), 6.0, true)

	for _, in := range instructions {
		if in.Start > 3.0+1e-9 {
			t.Errorf("Entrance starts at %.3f, past the 3.0s midpoint", in.Start)
		}
	}
}

func TestDrawDurationScalesWithPathLength(t *testing.T) {
	profile := style.Default()
	alloc := New(&profile)

	short := []blueprint.VisualElement{
		{ID: "a", Type: blueprint.TypeArrow, Size: blueprint.Size{Width: 200}},
	}
	long := []blueprint.VisualElement{
		{ID: "a", Type: blueprint.TypeArrow, Size: blueprint.Size{Width: 600}},
	}
	huge := []blueprint.VisualElement{
		{ID: "a", Type: blueprint.TypeArrow, Size: blueprint.Size{Width: 5000}},
	}

	shortIns, _ := alloc.Schedule(short, 10.0, true)
	longIns, _ := alloc.Schedule(long, 10.0, true)
	hugeIns, _ := alloc.Schedule(huge, 10.0, true)

	if shortIns[0].Kind != "draw" {
		t.Errorf("Arrow should get a draw animation, got %s", shortIns[0].Kind)
	}
	if longIns[0].Duration <= shortIns[0].Duration {
		t.Errorf("Longer path should draw longer: %.2f vs %.2f", longIns[0].Duration, shortIns[0].Duration)
	}
	if hugeIns[0].Duration > maxDrawDuration {
		t.Errorf("Draw duration exceeds cap: %.2f", hugeIns[0].Duration)
	}
}

func TestOverrunRescalesToFitExactly(t *testing.T) {
	// Slow animation speed inflates the naive schedule well past the
	// scene duration; one proportional factor must pull the last
	// instruction back to exactly the scene end.
	profile := style.Default()
	profile.Animation.SpeedMultiplier = 0.25
	alloc := New(&profile)

	elements := []blueprint.VisualElement{
		{ID: "a", Type: blueprint.TypeArrow, Size: blueprint.Size{Width: 1600}},
	}

	instructions, _ := alloc.Schedule(elements, 8.0, false)

	end := 0.0
	for _, in := range instructions {
		if e := in.End(); e > end {
			end = e
		}
	}
	if math.Abs(end-8.0) > 1e-9 {
		t.Errorf("Rescaled schedule should end at exactly 8.0s, got %f", end)
	}
}

func TestRescalePreservesOrdering(t *testing.T) {
	profile := style.Default()
	profile.Animation.SpeedMultiplier = 0.25
	alloc := New(&profile)

	elements := actorElements(5)
	elements = append(elements, blueprint.VisualElement{
		ID: "arrow", Type: blueprint.TypeArrow, Size: blueprint.Size{Width: 2000},
	})

	instructions, _ := alloc.Schedule(elements, 2.0, true)

	end := 0.0
	for i := 1; i < len(instructions); i++ {
		if instructions[i].Start < instructions[i-1].Start {
			t.Errorf("Rescale broke start ordering at %d", i)
		}
	}
	for _, in := range instructions {
		if e := in.End(); e > end {
			end = e
		}
		if in.End() > 2.0+1e-9 {
			t.Errorf("Instruction ends past scene duration: %f", in.End())
		}
	}
	t.Logf("Schedule ends at %.3fs of 2.0s", end)
}

func TestExitInstructionsBeforeNonCutTransition(t *testing.T) {
	profile := style.Default()
	alloc := New(&profile)

	instructions, transition := alloc.Schedule(actorElements(2), 6.0, false)

	if transition == nil {
		t.Fatal("Expected a transition for a non-final scene")
	}
	if transition.Kind != "fade" {
		t.Errorf("Expected fade transition, got %s", transition.Kind)
	}
	if transition.Duration != 0.5 {
		t.Errorf("Expected smooth preset duration 0.5, got %f", transition.Duration)
	}

	exits := 0
	for _, in := range instructions {
		if in.Kind == "fade_out" {
			exits++
			if math.Abs(in.End()-6.0) > 1e-9 {
				t.Errorf("Exit should end at the scene boundary, ends at %f", in.End())
			}
		}
	}
	if exits != 2 {
		t.Errorf("Expected one exit per element, got %d", exits)
	}
}

func TestSnappyPresetCutsWithoutExits(t *testing.T) {
	profile := style.Default()
	profile.Animation.TransitionSpeed = "snappy"
	alloc := New(&profile)

	instructions, transition := alloc.Schedule(actorElements(3), 6.0, false)

	if transition == nil || transition.Kind != "cut" {
		t.Fatalf("Expected cut transition, got %+v", transition)
	}
	for _, in := range instructions {
		if in.Kind == "fade_out" {
			t.Error("Cut transitions must not schedule exit instructions")
		}
	}
}

func TestTransitionDurationClamped(t *testing.T) {
	profile := style.Default()
	profile.Animation.SpeedMultiplier = 0.1 // would be 5s unclamped
	alloc := New(&profile)

	_, transition := alloc.Schedule(actorElements(1), 30.0, false)
	if transition == nil {
		t.Fatal("Expected transition")
	}
	if transition.Duration > maxTransitionDuration {
		t.Errorf("Transition duration %.2f exceeds the configured range", transition.Duration)
	}
}

package layout

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/ivlev/script2video/internal/blueprint"
	"github.com/ivlev/script2video/internal/style"
)

var testCanvas = blueprint.Canvas{Width: 1280, Height: 720, Margin: 48}

func testElements() []blueprint.VisualElement {
	return []blueprint.VisualElement{
		{ID: "title_text", Type: blueprint.TypeTextLabel, Role: blueprint.RoleAnnotation, Label: "How caching works"},
		{ID: "elem_0", Type: blueprint.TypeBox, Role: blueprint.RoleActor, Label: "Client"},
		{ID: "elem_1", Type: blueprint.TypeArrow, Role: blueprint.RoleDataFlow, From: "elem_0", To: "elem_2"},
		{ID: "elem_2", Type: blueprint.TypeBox, Role: blueprint.RoleActor, Label: "Server"},
		{ID: "elem_3", Type: blueprint.TypeCircle, Role: blueprint.RoleActor, Label: "Token"},
	}
}

func TestPlaceContainment(t *testing.T) {
	profile := style.Default()
	engine := NewEngine(testCanvas, &profile)

	placed, warnings := engine.Place(testElements())
	if len(warnings) != 0 {
		t.Errorf("Unexpected warnings: %v", warnings)
	}

	for _, el := range placed {
		if el.Position.X < 0 || el.Position.Y < 0 {
			t.Errorf("Element %s has negative position: %+v", el.ID, el.Position)
		}
		if el.Position.X+el.Size.Width > testCanvas.Width-testCanvas.Margin {
			t.Errorf("Element %s exceeds right bound", el.ID)
		}
		if el.Position.Y+el.Size.Height > testCanvas.Height-testCanvas.Margin {
			t.Errorf("Element %s exceeds bottom bound", el.ID)
		}
	}
}

func TestPlaceNonOverlap(t *testing.T) {
	profile := style.Default()
	engine := NewEngine(testCanvas, &profile)

	placed, _ := engine.Place(testElements())

	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			a, b := &placed[i], &placed[j]
			if a.IsConnector() || b.IsConnector() || a.Degraded || b.Degraded {
				continue
			}
			if area := overlapArea(a, b); area > engine.Epsilon {
				t.Errorf("Elements %s and %s overlap by %.1f", a.ID, b.ID, area)
			}
		}
	}
}

func TestPlaceDeterministic(t *testing.T) {
	profile := style.Default()
	engine := NewEngine(testCanvas, &profile)

	first, _ := engine.Place(testElements())
	second, _ := engine.Place(testElements())

	if !reflect.DeepEqual(first, second) {
		t.Error("Two layout runs over identical input differ")
	}
}

func TestPlaceDoesNotMutateInput(t *testing.T) {
	profile := style.Default()
	engine := NewEngine(testCanvas, &profile)

	input := testElements()
	engine.Place(input)

	if input[1].Size.Width != 0 {
		t.Error("Place must not mutate its input slice")
	}
}

func TestArrowSpansEndpointCenters(t *testing.T) {
	profile := style.Default()
	engine := NewEngine(testCanvas, &profile)

	placed, _ := engine.Place(testElements())

	byID := map[string]blueprint.VisualElement{}
	for _, el := range placed {
		byID[el.ID] = el
	}

	arrow := byID["elem_1"]
	from := byID["elem_0"]
	to := byID["elem_2"]

	fc, tc := from.Center(), to.Center()
	minX := fc.X
	if tc.X < minX {
		minX = tc.X
	}
	if arrow.Position.X != minX {
		t.Errorf("Arrow X = %f, want %f", arrow.Position.X, minX)
	}
	wantW := fc.X - tc.X
	if wantW < 0 {
		wantW = -wantW
	}
	if arrow.Size.Width != wantW {
		t.Errorf("Arrow width = %f, want %f", arrow.Size.Width, wantW)
	}
}

func TestCompactDensityStacksVertically(t *testing.T) {
	profile := style.Default()
	profile.Layout.Density = "compact"
	engine := NewEngine(testCanvas, &profile)

	elements := []blueprint.VisualElement{
		{ID: "elem_0", Type: blueprint.TypeBox, Role: blueprint.RoleActor, Label: "A"},
		{ID: "elem_1", Type: blueprint.TypeBox, Role: blueprint.RoleActor, Label: "B"},
	}
	placed, _ := engine.Place(elements)

	if placed[0].Position.Y >= placed[1].Position.Y {
		t.Errorf("Compact density should stack vertically: y0=%f y1=%f", placed[0].Position.Y, placed[1].Position.Y)
	}
	if placed[0].Position.X != placed[1].Position.X {
		t.Errorf("Vertical stack should share X: x0=%f x1=%f", placed[0].Position.X, placed[1].Position.X)
	}
}

func TestCrowdedSceneDegradesInsteadOfFailing(t *testing.T) {
	profile := style.Default()
	// A canvas barely larger than its margins forces the relaxation path.
	tiny := blueprint.Canvas{Width: 120, Height: 90, Margin: 10}
	engine := NewEngine(tiny, &profile)

	var elements []blueprint.VisualElement
	for i := 0; i < 12; i++ {
		elements = append(elements, blueprint.VisualElement{
			ID:   fmt.Sprintf("elem_%d", i),
			Type: blueprint.TypeBox,
			Role: blueprint.RoleActor,
		})
	}

	placed, warnings := engine.Place(elements)

	if len(placed) != 12 {
		t.Fatalf("Layout must return a complete scene, got %d elements", len(placed))
	}
	for _, el := range placed {
		if el.Position.X+el.Size.Width > tiny.Width-tiny.Margin ||
			el.Position.Y+el.Size.Height > tiny.Height-tiny.Margin {
			t.Errorf("Element %s escaped the canvas", el.ID)
		}
	}
	t.Logf("Degradation warnings: %d", len(warnings))
}

func TestBandCollisionFlagsDegraded(t *testing.T) {
	profile := style.Default()
	// Too little height for the title band, the grid and the bottom
	// band together, so the bands collapse onto the actors.
	short := blueprint.Canvas{Width: 400, Height: 125, Margin: 20}
	engine := NewEngine(short, &profile)

	elements := []blueprint.VisualElement{
		{ID: "title_text", Type: blueprint.TypeTextLabel, Role: blueprint.RoleAnnotation, Label: "Connection setup"},
		{ID: "elem_0", Type: blueprint.TypeTextLabel, Role: blueprint.RoleAnnotation, Label: "critical handshake path"},
		{ID: "elem_1", Type: blueprint.TypeBox, Role: blueprint.RoleActor, Label: "Client"},
		{ID: "elem_2", Type: blueprint.TypeBox, Role: blueprint.RoleActor, Label: "Server"},
	}

	placed, warnings := engine.Place(elements)

	degraded := 0
	for i := range placed {
		if placed[i].Degraded {
			degraded++
		}
		for j := i + 1; j < len(placed); j++ {
			a, b := &placed[i], &placed[j]
			if a.IsConnector() || b.IsConnector() {
				continue
			}
			if overlapArea(a, b) > engine.Epsilon && !a.Degraded && !b.Degraded {
				t.Errorf("Elements %s and %s overlap with neither flagged degraded", a.ID, b.ID)
			}
		}
	}
	if degraded == 0 {
		t.Fatal("Expected at least one degraded element on a canvas too short for the bands")
	}
	if len(warnings) == 0 {
		t.Error("Expected degradation warnings")
	}
}

func TestGridShape(t *testing.T) {
	profile := style.Default()
	engine := NewEngine(testCanvas, &profile)

	cases := []struct {
		n          int
		rows, cols int
	}{
		{1, 1, 1},
		{2, 1, 2},
		{4, 2, 2},
		{5, 2, 3},
		{9, 3, 3},
	}
	for _, tc := range cases {
		rows, cols, _ := engine.gridShape(tc.n)
		if rows != tc.rows || cols != tc.cols {
			t.Errorf("gridShape(%d) = %dx%d, want %dx%d", tc.n, rows, cols, tc.rows, tc.cols)
		}
		if rows*cols < tc.n {
			t.Errorf("gridShape(%d) has too few slots", tc.n)
		}
	}
}

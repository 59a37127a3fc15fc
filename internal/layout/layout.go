package layout

import (
	"fmt"
	"math"

	"github.com/ivlev/script2video/internal/blueprint"
	"github.com/ivlev/script2video/internal/style"
)

// Base element extents in canvas units, scaled by the typography size.
const (
	baseBoxWidth     = 180.0
	baseBoxHeight    = 100.0
	baseCircleSize   = 120.0
	baseIconSize     = 96.0
	minElementSize   = 10.0
	charWidthFactor  = 0.55
	labelHeightScale = 1.4
	shrinkFactor     = 0.85
)

// Engine assigns collision-free canvas coordinates to a scene's
// elements. Placement is grid-based and deterministic: identical
// element lists, canvas and style always produce identical positions.
type Engine struct {
	Canvas blueprint.Canvas
	Style  *style.StyleProfile

	// Epsilon is the tolerated overlap area between two non-connector
	// elements before placement counts as degraded.
	Epsilon float64
	// MaxResizeAttempts bounds the shrink-to-fit loop per element.
	MaxResizeAttempts int
}

// NewEngine creates a layout engine with default tolerances.
func NewEngine(canvas blueprint.Canvas, profile *style.StyleProfile) *Engine {
	return &Engine{
		Canvas:            canvas,
		Style:             profile,
		Epsilon:           4.0,
		MaxResizeAttempts: 3,
	}
}

// Place fills Position and Size for every element and returns the
// placed list plus degradation warnings. Already-placed elements are
// never moved: later elements shrink to adapt, which bounds the work
// per scene to one pass. An element that still cannot satisfy the
// overlap invariant after the bounded resize attempts is placed anyway
// with its Degraded flag set, so layout always terminates with a
// complete scene.
func (e *Engine) Place(elements []blueprint.VisualElement) ([]blueprint.VisualElement, []string) {
	placed := make([]blueprint.VisualElement, len(elements))
	copy(placed, elements)

	var warnings []string

	var actors, labels, connectors []int
	for i := range placed {
		switch {
		case placed[i].IsConnector():
			connectors = append(connectors, i)
		case placed[i].Type == blueprint.TypeTextLabel:
			labels = append(labels, i)
		default:
			actors = append(actors, i)
		}
	}

	inner := e.innerRegion(len(labels) > 0)

	// done records every placed non-connector in placement order, so
	// collisions are detected across the bands, not just inside the grid.
	var done []int
	e.placeActors(placed, actors, inner, &done, &warnings)
	e.placeLabels(placed, labels, &done, &warnings)
	e.placeConnectors(placed, connectors, inner, &warnings)

	return placed, warnings
}

// region is an axis-aligned area of the canvas.
type region struct {
	x, y, w, h float64
}

// innerRegion returns the grid area: the canvas minus margins, minus
// the title band at the top and the annotation band at the bottom when
// the scene carries labels.
func (e *Engine) innerRegion(hasLabels bool) region {
	m := e.Canvas.Margin
	r := region{
		x: m,
		y: m,
		w: e.Canvas.Width - 2*m,
		h: e.Canvas.Height - 2*m,
	}
	if hasLabels {
		top := e.Style.Typography.TitleSize * 2
		bottom := e.Style.Typography.LabelSize * 2
		r.y += top
		r.h -= top + bottom
	}
	if r.h < minElementSize {
		r.h = minElementSize
	}
	return r
}

// separation returns the minimum gap kept between grid neighbours.
func (e *Engine) separation() float64 {
	if e.Style.Layout.Density == "compact" {
		return 12
	}
	return 24
}

// gridShape derives the slot grid from the element count and the
// primary layout axis. Balanced density flows horizontally (wide
// grids), compact stacks vertically.
func (e *Engine) gridShape(n int) (rows, cols int, vertical bool) {
	if n < 1 {
		return 1, 1, false
	}
	vertical = e.Style.Layout.Density == "compact"
	minor := int(math.Floor(math.Sqrt(float64(n))))
	if minor < 1 {
		minor = 1
	}
	major := (n + minor - 1) / minor
	if vertical {
		return major, minor, true
	}
	return minor, major, false
}

func (e *Engine) placeActors(placed []blueprint.VisualElement, actors []int, inner region, done *[]int, warnings *[]string) {
	n := len(actors)
	if n == 0 {
		return
	}

	rows, cols, vertical := e.gridShape(n)
	cellW := inner.w / float64(cols)
	cellH := inner.h / float64(rows)
	sep := e.separation()

	for slot, idx := range actors {
		el := &placed[idx]

		var row, col int
		if vertical {
			col = slot / rows
			row = slot % rows
		} else {
			row = slot / cols
			col = slot % cols
		}

		w, h := e.desiredSize(el)

		// Shrink until the element fits its cell with separation, up to
		// the bounded attempt count, then clamp.
		for attempt := 0; attempt < e.MaxResizeAttempts && (w > cellW-sep || h > cellH-sep); attempt++ {
			w *= shrinkFactor
			h *= shrinkFactor
		}
		w = clamp(w, minElementSize, math.Max(cellW-sep, minElementSize))
		h = clamp(h, minElementSize, math.Max(cellH-sep, minElementSize))

		el.Position = blueprint.Position{
			X: inner.x + float64(col)*cellW + (cellW-w)/2,
			Y: inner.y + float64(row)*cellH + (cellH-h)/2,
		}
		el.Size = blueprint.Size{Width: w, Height: h}
		e.clampToCanvas(el)

		// First-declared wins its slot; a later element that still
		// collides is placed anyway with the invariant relaxed.
		e.flagOverlap(placed, idx, *done, warnings)
		*done = append(*done, idx)
	}
}

// flagOverlap relaxes the overlap invariant on an element that still
// collides with any earlier placement. Earlier elements never move.
func (e *Engine) flagOverlap(placed []blueprint.VisualElement, idx int, done []int, warnings *[]string) {
	el := &placed[idx]
	for _, p := range done {
		if overlapArea(&placed[p], el) > e.Epsilon {
			el.Degraded = true
			*warnings = append(*warnings,
				fmt.Sprintf("layout: element %s overlaps %s beyond tolerance, invariant relaxed", el.ID, placed[p].ID))
			return
		}
	}
}

// desiredSize returns the unconstrained extent for an element type.
func (e *Engine) desiredSize(el *blueprint.VisualElement) (float64, float64) {
	scale := e.Style.Typography.LabelSize / 20.0
	switch el.Type {
	case blueprint.TypeCircle:
		return baseCircleSize * scale, baseCircleSize * scale
	case blueprint.TypeIcon:
		return baseIconSize * scale, baseIconSize * scale
	default:
		return baseBoxWidth * scale, baseBoxHeight * scale
	}
}

// placeLabels puts the first label (the scene title) in the top band
// and stacks the rest left-to-right along the bottom band.
func (e *Engine) placeLabels(placed []blueprint.VisualElement, labels []int, done *[]int, warnings *[]string) {
	if len(labels) == 0 {
		return
	}

	m := e.Canvas.Margin
	usableW := e.Canvas.Width - 2*m
	sep := e.separation()

	// Title.
	title := &placed[labels[0]]
	tw := clamp(float64(len(title.Label))*e.Style.Typography.TitleSize*charWidthFactor, minElementSize, usableW)
	th := e.Style.Typography.TitleSize * labelHeightScale
	title.Size = blueprint.Size{Width: tw, Height: th}
	title.Position = blueprint.Position{X: m + (usableW-tw)/2, Y: m}
	e.clampToCanvas(title)
	e.flagOverlap(placed, labels[0], *done, warnings)
	*done = append(*done, labels[0])

	// Remaining annotations flow along the bottom edge.
	lh := e.Style.Typography.LabelSize * labelHeightScale
	y := e.Canvas.Height - m - lh
	x := m
	for _, idx := range labels[1:] {
		el := &placed[idx]
		w := clamp(float64(len(el.Label))*e.Style.Typography.LabelSize*charWidthFactor, minElementSize, usableW)
		remaining := e.Canvas.Width - m - x
		if w > remaining {
			for attempt := 0; attempt < e.MaxResizeAttempts && w > remaining; attempt++ {
				w *= shrinkFactor
			}
			if w > remaining {
				w = math.Max(remaining, minElementSize)
				el.Degraded = true
				*warnings = append(*warnings,
					fmt.Sprintf("layout: annotation %s does not fit the bottom band, invariant relaxed", el.ID))
			}
		}
		el.Size = blueprint.Size{Width: w, Height: lh}
		el.Position = blueprint.Position{X: x, Y: y}
		e.clampToCanvas(el)
		e.flagOverlap(placed, idx, *done, warnings)
		*done = append(*done, idx)
		x += w + sep
	}
}

// placeConnectors positions each arrow/line as the straight path
// between its endpoint centers, after those endpoints are placed.
func (e *Engine) placeConnectors(placed []blueprint.VisualElement, connectors []int, inner region, warnings *[]string) {
	byID := make(map[string]*blueprint.VisualElement, len(placed))
	for i := range placed {
		byID[placed[i].ID] = &placed[i]
	}

	for _, idx := range connectors {
		el := &placed[idx]
		from, okFrom := byID[el.From]
		to, okTo := byID[el.To]
		if !okFrom || !okTo {
			// A dangling endpoint is a structural defect the assembler
			// reports; park the path so layout still completes.
			el.Position = blueprint.Position{X: inner.x + inner.w/2, Y: inner.y + inner.h/2}
			el.Size = blueprint.Size{}
			*warnings = append(*warnings,
				fmt.Sprintf("layout: connector %s has unresolved endpoints", el.ID))
			continue
		}
		a, b := from.Center(), to.Center()
		el.Position = blueprint.Position{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)}
		el.Size = blueprint.Size{Width: math.Abs(a.X - b.X), Height: math.Abs(a.Y - b.Y)}
	}
}

// clampToCanvas forces an element inside the canvas minus margin.
func (e *Engine) clampToCanvas(el *blueprint.VisualElement) {
	m := e.Canvas.Margin
	maxW := e.Canvas.Width - 2*m
	maxH := e.Canvas.Height - 2*m
	el.Size.Width = clamp(el.Size.Width, 0, maxW)
	el.Size.Height = clamp(el.Size.Height, 0, maxH)
	el.Position.X = clamp(el.Position.X, m, e.Canvas.Width-m-el.Size.Width)
	el.Position.Y = clamp(el.Position.Y, m, e.Canvas.Height-m-el.Size.Height)
}

// overlapArea returns the intersection area of two element rectangles.
func overlapArea(a, b *blueprint.VisualElement) float64 {
	w := math.Min(a.Position.X+a.Size.Width, b.Position.X+b.Size.Width) - math.Max(a.Position.X, b.Position.X)
	h := math.Min(a.Position.Y+a.Size.Height, b.Position.Y+b.Size.Height) - math.Max(a.Position.Y, b.Position.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
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

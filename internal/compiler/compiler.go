package compiler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/script2video/internal/blueprint"
	"github.com/ivlev/script2video/internal/config"
	"github.com/ivlev/script2video/internal/layout"
	"github.com/ivlev/script2video/internal/script"
	"github.com/ivlev/script2video/internal/style"
	"github.com/ivlev/script2video/internal/synthesizer"
	"github.com/ivlev/script2video/internal/system"
	"github.com/ivlev/script2video/internal/timing"
)

// Compiler turns a script document into a validated render-ready
// blueprint. Scenes are compiled independently on a worker pool; the
// resolved style profile is the only state they share, read-only.
type Compiler struct {
	Style       style.StyleProfile
	Canvas      blueprint.Canvas
	Constraints blueprint.Constraints
	Workers     int
	Log         *logrus.Logger

	maxResizeAttempts int

	// Injection points for deterministic tests.
	now   func() time.Time
	newID func() string
}

// New wires a compiler from a resolved style profile and run config.
func New(profile style.StyleProfile, cfg *config.Config, log *logrus.Logger) *Compiler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Compiler{
		Style:  profile,
		Canvas: cfg.Canvas,
		Constraints: blueprint.Constraints{
			OverlapEpsilon:   cfg.Layout.OverlapEpsilon,
			OverrunTolerance: cfg.Timing.OverrunTolerance,
		},
		Workers:           cfg.Workers,
		Log:               log,
		maxResizeAttempts: cfg.Layout.MaxResizeAttempts,
		now:               time.Now,
		newID:             uuid.NewString,
	}
}

type sceneResult struct {
	scene    blueprint.CompiledScene
	warnings []string
}

// Compile runs the full pipeline: per-scene synthesis, layout and
// timing in parallel, then ordered assembly and validation.
//
// Degraded scenes (extraction fallbacks, relaxed overlap) compile
// successfully with warnings logged. Only malformed input or a
// structural violation found at assembly fails the run; even then every
// in-flight scene worker is allowed to finish first.
func (c *Compiler) Compile(ctx context.Context, s *script.Script) (*blueprint.Blueprint, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	workers := c.Workers
	if workers <= 0 {
		workers = system.DetectWorkers()
	}

	c.Log.WithFields(logrus.Fields{
		"topic":   s.Topic,
		"scenes":  len(s.Scenes),
		"workers": workers,
	}).Info("compiling blueprint")

	results := make([]sceneResult, len(s.Scenes))

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i := range s.Scenes {
		i := i
		g.Go(func() error {
			results[i] = c.compileScene(s.Scenes[i], i == len(s.Scenes)-1)
			return nil
		})
	}
	// Scene workers never fail; Wait is the join barrier that keeps
	// partial work from leaking past assembly.
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return c.assemble(s, results)
}

// compileScene runs synthesize -> layout -> timing for one scene.
func (c *Compiler) compileScene(sc script.Scene, last bool) sceneResult {
	var res sceneResult

	synth := synthesizer.New(&c.Style)
	elements, warnings := synth.Synthesize(sc)
	res.warnings = append(res.warnings, warnings...)

	engine := layout.NewEngine(c.Canvas, &c.Style)
	engine.Epsilon = c.Constraints.OverlapEpsilon
	if c.maxResizeAttempts > 0 {
		engine.MaxResizeAttempts = c.maxResizeAttempts
	}
	placed, warnings := engine.Place(elements)
	res.warnings = append(res.warnings, warnings...)

	alloc := timing.New(&c.Style)
	animations, transition := alloc.Schedule(placed, sc.Duration, last)

	res.scene = blueprint.CompiledScene{
		ID:                sc.ID,
		Duration:          sc.Duration,
		Narration:         sc.Narration,
		VisualDescription: sc.VisualDescription,
		Background:        c.Style.ColorPalette.Background,
		Elements:          placed,
		Animations:        animations,
		Transition:        transition,
	}
	return res
}

// assemble reorders completed scenes by index, accumulates scene start
// times across the script and validates every structural invariant.
func (c *Compiler) assemble(s *script.Script, results []sceneResult) (*blueprint.Blueprint, error) {
	b := &blueprint.Blueprint{
		ID:          c.newID(),
		Topic:       s.Topic,
		Style:       c.Style,
		GeneratedAt: c.now().UTC(),
		Scenes:      make([]blueprint.CompiledScene, len(results)),
	}

	degraded := 0
	start := 0.0
	for i := range results {
		for _, w := range results[i].warnings {
			c.Log.Warn(w)
		}
		scene := results[i].scene
		scene.StartTime = start
		start += scene.Duration
		degraded += scene.DegradedCount()
		b.Scenes[i] = scene
	}
	b.TotalDuration = start

	if err := b.Validate(c.Canvas, c.Constraints); err != nil {
		return nil, err
	}

	entry := c.Log.WithFields(logrus.Fields{
		"blueprint_id": b.ID,
		"duration":     b.TotalDuration,
		"degraded":     degraded,
	})
	if degraded > 0 {
		entry.Warn("blueprint assembled with degraded elements")
	} else {
		entry.Info("blueprint assembled")
	}
	return b, nil
}

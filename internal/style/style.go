package style

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ColorPalette maps semantic color roles to color-value strings.
type ColorPalette struct {
	Primary    string `yaml:"primary" json:"primary"`
	Secondary  string `yaml:"secondary" json:"secondary"`
	Background string `yaml:"background" json:"background"`
	Text       string `yaml:"text" json:"text"`
	Accent     string `yaml:"accent" json:"accent"`
}

// Typography holds the font sizes used to derive label element extents.
type Typography struct {
	TitleSize float64 `yaml:"title_size" json:"title_size"`
	LabelSize float64 `yaml:"label_size" json:"label_size"`
}

// Animation holds the timing preferences applied to every scene.
type Animation struct {
	// SpeedMultiplier scales all animation durations. 1.0 is neutral,
	// larger is faster.
	SpeedMultiplier float64 `yaml:"speed_multiplier" json:"speed_multiplier"`
	// Entrance is the default entrance kind for non-connector elements:
	// fade_in, slide_in or grow.
	Entrance string `yaml:"entrance" json:"entrance"`
	// Transition is the preferred inter-scene transition kind.
	Transition string `yaml:"transition" json:"transition"`
	// TransitionSpeed selects a duration preset: smooth, snappy, professional.
	TransitionSpeed string `yaml:"transition_speed" json:"transition_speed"`
}

// Layout holds placement preferences.
type Layout struct {
	// Density selects the primary layout axis and element separation:
	// "balanced" flows horizontally, "compact" stacks vertically with
	// tighter spacing.
	Density string `yaml:"density" json:"density"`
}

// StyleProfile is the resolved set of presentation parameters for one
// compilation. It is resolved once per run and shared read-only across
// all scene workers.
type StyleProfile struct {
	ColorPalette ColorPalette `yaml:"color_palette" json:"color_palette"`
	Typography   Typography   `yaml:"typography" json:"typography"`
	Animation    Animation    `yaml:"animation" json:"animation"`
	Layout       Layout       `yaml:"layout" json:"layout"`
}

// DefaultYAML is the built-in style configuration used when no default
// document is supplied by the caller.
const DefaultYAML = `color_palette:
  primary: "#2E86DE"
  secondary: "#5F27CD"
  background: "#FFFFFF"
  text: "#2C3E50"
  accent: "#FF6B6B"
typography:
  title_size: 36
  label_size: 20
animation:
  speed_multiplier: 1.0
  entrance: fade_in
  transition: fade
  transition_speed: smooth
layout:
  density: balanced
`

// Default returns the built-in style profile.
func Default() StyleProfile {
	p, err := Resolve([]byte(DefaultYAML), nil)
	if err != nil {
		// The built-in document is a compile-time constant.
		panic(err)
	}
	return *p
}

// Resolve merges an optional partial override document into the default
// style configuration and returns the resolved profile.
//
// The merge is leaf-level: overriding color_palette.accent leaves the
// other palette entries at their defaults. Unknown override keys are
// ignored. Resolve fails only when the default document itself is
// malformed; that is a fatal configuration error, not a runtime
// condition.
func Resolve(defaultDoc, overrideDoc []byte) (*StyleProfile, error) {
	var base map[string]interface{}
	if err := yaml.Unmarshal(defaultDoc, &base); err != nil {
		return nil, fmt.Errorf("malformed default style: %w", err)
	}
	if base == nil {
		return nil, fmt.Errorf("malformed default style: empty document")
	}

	if len(overrideDoc) > 0 {
		var override map[string]interface{}
		if err := yaml.Unmarshal(overrideDoc, &override); err == nil {
			base = deepMerge(base, override)
		}
		// A malformed override never fails the run; the defaults stand.
	}

	merged, err := yaml.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("malformed default style: %w", err)
	}

	var profile StyleProfile
	if err := yaml.Unmarshal(merged, &profile); err != nil {
		return nil, fmt.Errorf("malformed default style: %w", err)
	}

	profile.fillZero()
	return &profile, nil
}

// deepMerge overlays src onto dst, replacing values at the leaf level.
// Nested maps are merged recursively; any other value wins wholesale.
func deepMerge(dst, src map[string]interface{}) map[string]interface{} {
	for k, v := range src {
		if sub, ok := v.(map[string]interface{}); ok {
			if existing, ok := dst[k].(map[string]interface{}); ok {
				dst[k] = deepMerge(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
	return dst
}

// fillZero backstops fields an override may have blanked out, so the
// rest of the compiler never divides by zero or switches on "".
func (p *StyleProfile) fillZero() {
	if p.Animation.SpeedMultiplier <= 0 {
		p.Animation.SpeedMultiplier = 1.0
	}
	if p.Animation.Entrance == "" {
		p.Animation.Entrance = "fade_in"
	}
	if p.Animation.Transition == "" {
		p.Animation.Transition = "fade"
	}
	if p.Animation.TransitionSpeed == "" {
		p.Animation.TransitionSpeed = "smooth"
	}
	if p.Typography.TitleSize <= 0 {
		p.Typography.TitleSize = 36
	}
	if p.Typography.LabelSize <= 0 {
		p.Typography.LabelSize = 20
	}
	if p.Layout.Density == "" {
		p.Layout.Density = "balanced"
	}
}

// ColorFor returns the palette color for an element type.
func (p *StyleProfile) ColorFor(elemType string) string {
	switch elemType {
	case "box":
		return p.ColorPalette.Primary
	case "circle", "icon":
		return p.ColorPalette.Secondary
	case "arrow", "line":
		return p.ColorPalette.Accent
	case "text_label":
		return p.ColorPalette.Text
	default:
		return p.ColorPalette.Primary
	}
}

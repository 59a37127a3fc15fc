package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scene is one unit of narration plus visuals with a target duration.
// Scenes are read-only inputs to the compiler.
type Scene struct {
	ID                int     `yaml:"scene_id" json:"scene_id"`
	Narration         string  `yaml:"narration" json:"narration"`
	VisualDescription string  `yaml:"visual_description" json:"visual_description"`
	Duration          float64 `yaml:"duration" json:"duration"`
}

// Script is the ordered scene sequence produced by the script-generation
// stage. It is immutable input to the blueprint compiler.
type Script struct {
	Topic         string  `yaml:"topic" json:"topic"`
	TotalDuration float64 `yaml:"total_duration" json:"total_duration"`
	Scenes        []Scene `yaml:"scenes" json:"scenes"`
}

// FieldError reports a malformed script document. It names the offending
// field path so the upstream stage can be fixed.
type FieldError struct {
	Path   string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("script field %s: %s", e.Path, e.Reason)
}

// Read loads a script document from a YAML or JSON file. JSON parses as
// a YAML subset, so one decoder covers both formats.
func Read(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// Parse decodes and normalizes a script document.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// normalize fills in fields the upstream generator is allowed to omit:
// missing scene IDs become positional, a zero total duration becomes the
// sum of scene durations.
func (s *Script) normalize() {
	for i := range s.Scenes {
		if s.Scenes[i].ID == 0 {
			s.Scenes[i].ID = i + 1
		}
	}
	if s.TotalDuration == 0 {
		for i := range s.Scenes {
			s.TotalDuration += s.Scenes[i].Duration
		}
	}
}

// Validate checks the document shape. Any failure here is a fatal
// configuration error reported before scene work begins.
func (s *Script) Validate() error {
	if s.Topic == "" {
		return &FieldError{Path: "topic", Reason: "must not be empty"}
	}
	if len(s.Scenes) == 0 {
		return &FieldError{Path: "scenes", Reason: "must contain at least one scene"}
	}
	for i := range s.Scenes {
		sc := &s.Scenes[i]
		if sc.ID != i+1 {
			return &FieldError{
				Path:   fmt.Sprintf("scenes[%d].scene_id", i),
				Reason: fmt.Sprintf("expected sequential id %d, got %d", i+1, sc.ID),
			}
		}
		if sc.Duration <= 0 {
			return &FieldError{
				Path:   fmt.Sprintf("scenes[%d].duration", i),
				Reason: "must be greater than zero",
			}
		}
		if sc.Narration == "" {
			return &FieldError{
				Path:   fmt.Sprintf("scenes[%d].narration", i),
				Reason: "must not be empty",
			}
		}
	}
	return nil
}

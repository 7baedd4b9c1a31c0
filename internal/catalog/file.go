package catalog

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// yamlFile is the on-disk format for sharing custom methods.
type yamlFile struct {
	Patterns []yamlPattern `yaml:"patterns"`
}

type yamlPattern struct {
	ID          string `yaml:"id,omitempty"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Inhale      int    `yaml:"inhale"`
	HoldIn      int    `yaml:"hold_in,omitempty"`
	Exhale      int    `yaml:"exhale"`
	HoldOut     int    `yaml:"hold_out,omitempty"`
	Icon        string `yaml:"icon,omitempty"`
	Color       string `yaml:"color,omitempty"`
}

// LoadFile reads patterns from a YAML file. Every pattern is validated;
// the first invalid one fails the whole file.
func LoadFile(fs afero.Fs, path string) ([]Pattern, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}
	return Decode(data)
}

func Decode(data []byte) ([]Pattern, error) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse pattern yaml: %w", err)
	}

	out := make([]Pattern, 0, len(f.Patterns))
	for i, yp := range f.Patterns {
		// Range-check before converting so huge values cannot overflow.
		for _, n := range []int{yp.Inhale, yp.HoldIn, yp.Exhale, yp.HoldOut} {
			if n < 0 || n > MaxPhaseSeconds {
				return nil, fmt.Errorf("pattern %d: %w: phases must be 0 to %d seconds", i+1, ErrInvalidMethod, MaxPhaseSeconds)
			}
		}
		p := Pattern{
			ID:          yp.ID,
			Name:        yp.Name,
			Description: yp.Description,
			Inhale:      secs(yp.Inhale),
			HoldIn:      secs(yp.HoldIn),
			Exhale:      secs(yp.Exhale),
			HoldOut:     secs(yp.HoldOut),
			Icon:        yp.Icon,
			Color:       yp.Color,
			Custom:      true,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i+1, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Encode renders patterns in the same format LoadFile reads.
func Encode(patterns []Pattern) ([]byte, error) {
	var f yamlFile
	for _, p := range patterns {
		m := p.ToMethod()
		f.Patterns = append(f.Patterns, yamlPattern{
			ID:          m.ID,
			Name:        m.Title,
			Description: m.Description,
			Inhale:      m.Inhale,
			HoldIn:      m.HoldIn,
			Exhale:      m.Exhale,
			HoldOut:     m.HoldOut,
			Icon:        m.Icon,
			Color:       m.Color,
		})
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal pattern yaml: %w", err)
	}
	return data, nil
}

// SaveFile writes patterns to path.
func SaveFile(fs afero.Fs, path string, patterns []Pattern) error {
	data, err := Encode(patterns)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write pattern file: %w", err)
	}
	return nil
}

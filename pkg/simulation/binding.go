package simulation

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownTarget    = errors.New("unknown binding target")
	ErrMissingParameter = errors.New("missing parameter value")
)

// Bindable accepts a parameter value for one of its named fields
type Bindable interface {
	Bind(field string, value float64) error
}

type validator interface {
	Validate() error
}

// Binding routes the realized value of parameter Name to Field of Target
type Binding struct {
	Target string `yaml:"target" json:"target"`
	Field  string `yaml:"field" json:"field"`
	Name   string `yaml:"name" json:"name"`
}

type Manifest []Binding

// Names lists the parameters the manifest consumes, sorted and without duplicates
func (m Manifest) Names() []string {
	seen := make(map[string]struct{}, len(m))
	var names []string
	for _, b := range m {
		if _, ok := seen[b.Name]; ok {
			continue
		}
		seen[b.Name] = struct{}{}
		names = append(names, b.Name)
	}
	sort.Strings(names)
	return names
}

// Apply binds every realized value in manifest order, then validates every touched target
func (m Manifest) Apply(targets map[string]Bindable, realization map[string]float64) error {
	touched := make(map[string]struct{}, len(targets))
	for _, b := range m {
		target, ok := targets[b.Target]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTarget, b.Target)
		}
		value, ok := realization[b.Name]
		if !ok {
			return fmt.Errorf("%w: %s for %s.%s", ErrMissingParameter, b.Name, b.Target, b.Field)
		}
		if err := target.Bind(b.Field, value); err != nil {
			return fmt.Errorf("unable to bind %s to %s.%s: %w", b.Name, b.Target, b.Field, err)
		}
		touched[b.Target] = struct{}{}
	}

	names := make([]string, 0, len(touched))
	for name := range touched {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if v, ok := targets[name].(validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("invalid parameters for %s: %w", name, err)
			}
		}
	}
	return nil
}

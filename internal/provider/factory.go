package provider

import (
	"fmt"
	"sort"
	"strings"
)

// Constructor builds a ready-to-use provider. Construction must be cheap;
// expensive work (model loading, network dials) belongs in first use.
type Constructor func() (Provider, error)

// Factory maps provider names to constructors. It is populated at startup
// by the application wiring; there is no global registry.
type Factory struct {
	constructors map[string]Constructor
}

func NewFactory() *Factory {
	return &Factory{constructors: make(map[string]Constructor)}
}

// Register makes name constructible. Registering the same name twice
// replaces the previous constructor.
func (f *Factory) Register(name string, c Constructor) {
	f.constructors[name] = c
}

// New constructs the provider registered under name. Unknown names return
// an error listing the supported set.
func (f *Factory) New(name string) (Provider, error) {
	c, ok := f.constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider %q (supported: %s)", name, strings.Join(f.Supported(), ", "))
	}
	p, err := c()
	if err != nil {
		return nil, fmt.Errorf("construct provider %s: %w", name, err)
	}
	return p, nil
}

// Supported returns the registered provider names in sorted order.
func (f *Factory) Supported() []string {
	names := make([]string, 0, len(f.constructors))
	for name := range f.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

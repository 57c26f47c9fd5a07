// ABOUTME: Report adapter abstraction so alternate STA report dialects can plug in behind one Parse operation.
// ABOUTME: Ships the mock_sta adapter backed by Parse and a name-keyed registry for CLI selection.
package timing

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// Adapter turns report text in one dialect into timing paths. New dialects
// add implementations; they never add branches inside an existing one.
type Adapter interface {
	Parse(reportText string) []TimingPath
}

// AdapterConfig carries adapter knobs. Verbose enables a one-line parse log.
type AdapterConfig struct {
	Name    string
	Verbose bool
}

// DefaultAdapter is the adapter name used when none is requested.
const DefaultAdapter = "mock_sta"

// MockSTAAdapter parses the simplified block-oriented report layout.
type MockSTAAdapter struct {
	cfg AdapterConfig
}

// NewMockSTAAdapter creates a MockSTAAdapter. A nil cfg uses the defaults.
func NewMockSTAAdapter(cfg *AdapterConfig) *MockSTAAdapter {
	c := AdapterConfig{Name: DefaultAdapter}
	if cfg != nil {
		c = *cfg
		if c.Name == "" {
			c.Name = DefaultAdapter
		}
	}
	return &MockSTAAdapter{cfg: c}
}

// Config returns the adapter's configuration.
func (a *MockSTAAdapter) Config() AdapterConfig {
	return a.cfg
}

// Parse implements Adapter.
func (a *MockSTAAdapter) Parse(reportText string) []TimingPath {
	paths, blocks := parseBlocks(reportText)
	if a.cfg.Verbose {
		log.Printf("sta parse adapter=%s blocks=%d paths=%d dropped=%d",
			a.cfg.Name, blocks, len(paths), blocks-len(paths))
	}
	return paths
}

// AdapterFactory builds an adapter from its configuration.
type AdapterFactory func(cfg AdapterConfig) Adapter

var adapters = map[string]AdapterFactory{
	DefaultAdapter: func(cfg AdapterConfig) Adapter { return NewMockSTAAdapter(&cfg) },
}

// NewAdapter returns the adapter registered under name.
func NewAdapter(name string, cfg AdapterConfig) (Adapter, error) {
	if name == "" {
		name = DefaultAdapter
	}
	factory, ok := adapters[name]
	if !ok {
		return nil, fmt.Errorf("unknown report adapter %q (known: %s)", name, strings.Join(AdapterNames(), ", "))
	}
	cfg.Name = name
	return factory(cfg), nil
}

// AdapterNames lists the registered adapter names in sorted order.
func AdapterNames() []string {
	names := make([]string, 0, len(adapters))
	for n := range adapters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

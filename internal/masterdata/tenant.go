package masterdata

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScaleFactors shape a tenant's view of the shared feed. They are
// placeholder simulation data, not a physical capacity model.
type ScaleFactors struct {
	Generation float64 `yaml:"generation"`
	Usage      float64 `yaml:"usage"`
	Battery    float64 `yaml:"battery"`
}

// Tenant is an organizational scope that receives its own scaled view of
// the simulated feed.
type Tenant struct {
	ID      string       `yaml:"id"`
	Name    string       `yaml:"name"`
	Primary bool         `yaml:"primary"`
	Scale   ScaleFactors `yaml:"scale"`
}

// Registry is the static tenant list, read-only after load.
type Registry struct {
	tenants []Tenant
}

// DefaultRegistry returns the built-in two-campus registry: the primary
// site at full scale and a secondary site at the fixed discount.
func DefaultRegistry() *Registry {
	return &Registry{tenants: []Tenant{
		{
			ID:      "bmu",
			Name:    "Benadir Main University",
			Primary: true,
			Scale:   ScaleFactors{Generation: 1.0, Usage: 1.0, Battery: 1.0},
		},
		{
			ID:    "adu",
			Name:  "Adale District University",
			Scale: ScaleFactors{Generation: 0.85, Usage: 0.90, Battery: 0.95},
		},
	}}
}

type registryFile struct {
	Tenants []Tenant `yaml:"tenants"`
}

// LoadRegistry reads a tenant registry from a YAML file.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return nil, errors.New("masterdata: empty registry path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return NewRegistry(file.Tenants)
}

// NewRegistry validates and wraps a tenant list.
func NewRegistry(tenants []Tenant) (*Registry, error) {
	if len(tenants) == 0 {
		return nil, errors.New("masterdata: no tenants")
	}
	seen := make(map[string]struct{}, len(tenants))
	for _, tenant := range tenants {
		if tenant.ID == "" {
			return nil, errors.New("masterdata: tenant missing id")
		}
		if _, dup := seen[tenant.ID]; dup {
			return nil, fmt.Errorf("masterdata: duplicate tenant %q", tenant.ID)
		}
		seen[tenant.ID] = struct{}{}
		if tenant.Scale.Generation <= 0 || tenant.Scale.Usage <= 0 || tenant.Scale.Battery <= 0 {
			return nil, fmt.Errorf("masterdata: tenant %q has non-positive scale factors", tenant.ID)
		}
	}
	out := make([]Tenant, len(tenants))
	copy(out, tenants)
	return &Registry{tenants: out}, nil
}

// Tenants returns a copy of the tenant list.
func (r *Registry) Tenants() []Tenant {
	if r == nil {
		return nil
	}
	out := make([]Tenant, len(r.tenants))
	copy(out, r.tenants)
	return out
}

// Primary returns the designated primary tenant, or the first tenant when
// none is flagged.
func (r *Registry) Primary() (Tenant, bool) {
	if r == nil || len(r.tenants) == 0 {
		return Tenant{}, false
	}
	for _, tenant := range r.tenants {
		if tenant.Primary {
			return tenant, true
		}
	}
	return r.tenants[0], true
}

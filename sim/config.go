package sim

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// validate is shared by all struct-level checks; validator caches struct metadata.
var validate = validator.New()

// HostConfig describes the homogeneous host pool of a datacenter.
type HostConfig struct {
	Count   int     `yaml:"count" validate:"gt=0"`
	PEs     int     `yaml:"pes" validate:"gt=0"`
	MIPS    float64 `yaml:"mips" validate:"gt=0"`
	RAM     int64   `yaml:"ram" validate:"gt=0"`     // MB
	BW      int64   `yaml:"bw" validate:"gt=0"`      // Mbps
	Storage int64   `yaml:"storage" validate:"gt=0"` // MB
}

// TierConfig describes one VM tier. Tiers are laid out in declaration order.
// A Count of 0 is allowed as long as no rule routes into the tier.
type TierConfig struct {
	Name         string  `yaml:"name" validate:"required"`
	Count        int     `yaml:"count" validate:"gte=0"`
	PEs          int     `yaml:"pes" validate:"gt=0"`
	MIPS         float64 `yaml:"mips" validate:"gt=0"`
	RAM          int64   `yaml:"ram" validate:"gt=0"`
	BW           int64   `yaml:"bw" validate:"gt=0"`
	Size         int64   `yaml:"size" validate:"gt=0"`
	StartupDelay float64 `yaml:"startup_delay,omitempty" validate:"gte=0"` // seconds before the engine provisions the VM
}

// FleetConfig groups host and tier parameters for BuildFleet.
type FleetConfig struct {
	Hosts HostConfig   `yaml:"hosts"`
	Tiers []TierConfig `yaml:"tiers" validate:"required,min=1,dive"`
}

// FollowUpRule decides when a record spawns a follow-up cloudlet and how it is scaled.
// The trigger is strict: Field must exceed Above, or the record's category must be one
// of Categories.
type FollowUpRule struct {
	Field              string  `yaml:"field" validate:"required"`
	Above              float64 `yaml:"above"`
	Categories         []int   `yaml:"categories,omitempty"`
	Divisor            int64   `yaml:"divisor" validate:"gt=0"`             // applied to length and I/O sizes
	UtilizationDivisor float64 `yaml:"utilization_divisor" validate:"gt=0"` // applied to initial utilization
}

// Triggered reports whether rec spawns a follow-up cloudlet.
func (f FollowUpRule) Triggered(rec WorkloadRecord) bool {
	for _, c := range f.Categories {
		if rec.Category == c {
			return true
		}
	}
	v, ok := rec.Field(f.Field)
	return ok && v > f.Above
}

// Profile is a complete, self-contained simulation scenario.
type Profile struct {
	Name             string           `yaml:"name" validate:"required"`
	Description      string           `yaml:"description,omitempty"`
	Classifier       string           `yaml:"classifier" validate:"required"`
	RouteKey         RouteKey         `yaml:"route_key,omitempty"`
	Fleet            FleetConfig      `yaml:"fleet"`
	Rules            []TierRule       `yaml:"rules" validate:"required,min=1,dive"`
	FollowUp         FollowUpRule     `yaml:"follow_up"`
	SamplingInterval float64          `yaml:"sampling_interval" validate:"gt=0"` // seconds
	CostRate         float64          `yaml:"cost_rate" validate:"gte=0"`        // cost per second of execution
	RecordLimit      int              `yaml:"record_limit,omitempty" validate:"gte=0"`
	Records          []WorkloadRecord `yaml:"records" validate:"required,min=1,dive"`
}

// SelectedRecords returns the first min(RecordLimit, len(Records)) records.
// A RecordLimit of 0 selects all records.
func (p *Profile) SelectedRecords() []WorkloadRecord {
	if p.RecordLimit <= 0 || p.RecordLimit >= len(p.Records) {
		return p.Records
	}
	return p.Records[:p.RecordLimit]
}

// Validate checks struct constraints and the cross-field rules that tags cannot express.
// All violations are reported together in a single *ConfigError.
func (p *Profile) Validate() error {
	var errs error
	if err := validate.Struct(p); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("profile %q: %w", p.Name, err))
	}
	if !validClassifiers[p.Classifier] {
		errs = multierr.Append(errs, fmt.Errorf("profile %q: unknown classifier %q; valid: customer, transaction", p.Name, p.Classifier))
	}
	if !validRouteKeys[p.RouteKey] {
		errs = multierr.Append(errs, fmt.Errorf("profile %q: unknown route_key %q; valid: id, score", p.Name, p.RouteKey))
	}
	if !validFields[p.FollowUp.Field] {
		errs = multierr.Append(errs, fmt.Errorf("profile %q: follow_up.field %q is not a record field", p.Name, p.FollowUp.Field))
	}
	seen := make(map[int64]bool, len(p.Records))
	for i, r := range p.Records {
		if seen[r.ID] {
			errs = multierr.Append(errs, fmt.Errorf("profile %q: records[%d]: duplicate id %d", p.Name, i, r.ID))
		}
		seen[r.ID] = true
	}
	return asConfigError(errs)
}

// ProfileSet is the top-level structure of a profiles YAML file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type ProfileSet struct {
	Version  string              `yaml:"version"`
	Default  string              `yaml:"default"`
	Profiles map[string]*Profile `yaml:"profiles"`
}

// Names returns the profile names in sorted order.
func (s *ProfileSet) Names() []string {
	names := make([]string, 0, len(s.Profiles))
	for name := range s.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named profile, or the default profile when name is empty.
func (s *ProfileSet) Get(name string) (*Profile, error) {
	if name == "" {
		name = s.Default
	}
	p, ok := s.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q; available: %v", name, s.Names())
	}
	return p, nil
}

// ParseProfiles decodes a profiles document. Uses strict parsing: unrecognized keys
// (typos) are rejected. Each profile inherits its map key as name when unset.
func ParseProfiles(data []byte) (*ProfileSet, error) {
	var set ProfileSet
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}
	if len(set.Profiles) == 0 {
		return nil, fmt.Errorf("parsing profiles: no profiles defined")
	}
	for name, p := range set.Profiles {
		if p == nil {
			return nil, fmt.Errorf("parsing profiles: profile %q is empty", name)
		}
		if p.Name == "" {
			p.Name = name
		}
		if p.RouteKey == "" {
			p.RouteKey = RouteByID
		}
	}
	return &set, nil
}

// LoadProfiles reads and parses a profiles YAML file.
func LoadProfiles(path string) (*ProfileSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}
	return ParseProfiles(data)
}

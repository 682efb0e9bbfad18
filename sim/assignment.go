package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// comparators maps accepted condition operators.
var comparators = map[string]func(a, b float64) bool{
	">=": func(a, b float64) bool { return a >= b },
	">":  func(a, b float64) bool { return a > b },
	"<=": func(a, b float64) bool { return a <= b },
	"<":  func(a, b float64) bool { return a < b },
	"==": func(a, b float64) bool { return a == b },
	"!=": func(a, b float64) bool { return a != b },
}

// Condition is a single threshold predicate over a record field,
// e.g. {Field: "magnitude", Op: ">=", Value: 80000}.
type Condition struct {
	Field string  `yaml:"field"`
	Op    string  `yaml:"op"`
	Value float64 `yaml:"value"`
}

// Matches evaluates the condition against rec. Unknown fields or operators never match;
// NewTierRouter rejects them up front.
func (c Condition) Matches(rec WorkloadRecord) bool {
	v, ok := rec.Field(c.Field)
	if !ok {
		return false
	}
	cmp, ok := comparators[c.Op]
	if !ok {
		return false
	}
	return cmp(v, c.Value)
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %g", c.Field, c.Op, c.Value)
}

// TierRule routes records into Tier when every AllOf condition holds and, if AnyOf is
// non-empty, at least one AnyOf condition holds. A rule with no conditions matches
// every record and is used as the catch-all.
type TierRule struct {
	Tier  string      `yaml:"tier" validate:"required"`
	AnyOf []Condition `yaml:"any_of,omitempty"`
	AllOf []Condition `yaml:"all_of,omitempty"`
}

// Matches reports whether rec belongs to the rule's tier. Which condition fired is
// irrelevant; only membership matters.
func (r TierRule) Matches(rec WorkloadRecord) bool {
	for _, c := range r.AllOf {
		if !c.Matches(rec) {
			return false
		}
	}
	if len(r.AnyOf) == 0 {
		return true
	}
	for _, c := range r.AnyOf {
		if c.Matches(rec) {
			return true
		}
	}
	return false
}

// RouteKey selects the record attribute used for round-robin inside a tier.
type RouteKey string

const (
	// RouteByID spreads records over a tier's VMs by record id.
	RouteByID RouteKey = "id"
	// RouteByScore spreads records by score (priority in the financial profile).
	RouteByScore RouteKey = "score"
)

// validRouteKeys maps accepted route keys. Empty defaults to RouteByID.
var validRouteKeys = map[RouteKey]bool{
	RouteByID:    true,
	RouteByScore: true,
	"":           true,
}

func (k RouteKey) of(rec WorkloadRecord) int64 {
	if k == RouteByScore {
		return rec.Score
	}
	return rec.ID
}

// Assignment is the outcome of routing one record.
type Assignment struct {
	VmID int
	Tier string
	Rule int // index of the matching rule
}

type boundRule struct {
	TierRule
	tier Tier
}

// TierRouter assigns records to VMs: the first matching rule selects a tier, then
// the VM is tier.Offset + key mod tier.Size. It is load-oblivious and stateless,
// so the same record always lands on the same VM.
type TierRouter struct {
	rules []boundRule
	key   RouteKey
}

// NewTierRouter binds rules to layout. Any rule that targets an unknown tier, a tier
// without VMs, or uses an unknown field or operator is a configuration error; all such
// problems are reported together.
func NewTierRouter(layout TierLayout, rules []TierRule, key RouteKey) (*TierRouter, error) {
	var errs error
	if len(rules) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("router: at least one tier rule required"))
	}
	if !validRouteKeys[key] {
		errs = multierr.Append(errs, fmt.Errorf("router: unknown route key %q; valid: id, score", key))
	}
	if key == "" {
		key = RouteByID
	}

	bound := make([]boundRule, 0, len(rules))
	for i, r := range rules {
		prefix := fmt.Sprintf("router: rules[%d] (tier %q)", i, r.Tier)
		tier, ok := layout.Lookup(r.Tier)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("%s: unknown tier", prefix))
			continue
		}
		if tier.Size <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s: tier has no VMs but is routable", prefix))
		}
		for _, c := range append(append([]Condition{}, r.AllOf...), r.AnyOf...) {
			if !validFields[c.Field] {
				errs = multierr.Append(errs, fmt.Errorf("%s: unknown field %q", prefix, c.Field))
			}
			if _, ok := comparators[c.Op]; !ok {
				errs = multierr.Append(errs, fmt.Errorf("%s: unknown operator %q", prefix, c.Op))
			}
		}
		bound = append(bound, boundRule{TierRule: r, tier: tier})
	}
	if errs != nil {
		return nil, asConfigError(errs)
	}
	return &TierRouter{rules: bound, key: key}, nil
}

// Assign routes rec to a VM. Rules are evaluated in order; the first match wins.
func (r *TierRouter) Assign(rec WorkloadRecord) (Assignment, error) {
	for i, rule := range r.rules {
		if !rule.Matches(rec) {
			continue
		}
		n := int64(rule.tier.Size)
		idx := ((r.key.of(rec) % n) + n) % n
		a := Assignment{
			VmID: rule.tier.Offset + int(idx),
			Tier: rule.tier.Name,
			Rule: i,
		}
		logrus.Debugf("record %d -> tier %s vm %d (rule %d)", rec.ID, a.Tier, a.VmID, i)
		return a, nil
	}
	return Assignment{}, fmt.Errorf("record %d: %w", rec.ID, ErrNoMatchingTier)
}

package sim

import "errors"

// ErrNoMatchingTier is returned by TierRouter.Assign when no rule matches a record.
// Profiles normally end with a catch-all rule, so this indicates an incomplete rule list.
var ErrNoMatchingTier = errors.New("no tier rule matches record")

// ConfigError reports a fatal configuration problem detected before a run starts:
// an invalid profile, a routable tier without VMs, or a record with an undefined category.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// asConfigError wraps err as a *ConfigError unless it is nil or already one.
func asConfigError(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return err
	}
	return &ConfigError{Err: err}
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/uns-lab/sensorsim/pkg/asset"
	"github.com/uns-lab/sensorsim/pkg/connection"
	"github.com/uns-lab/sensorsim/pkg/transport"
	"github.com/uns-lab/sensorsim/pkg/wire"
)

// Validation errors.
var (
	ErrMissingSetting = errors.New("missing required setting")
	ErrInvalidSetting = errors.New("invalid setting")
)

// ValidationError lists every problem found by Validate.
type ValidationError struct {
	// Missing names the environment variables of absent required settings.
	Missing []string

	// Invalid describes malformed settings.
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	parts = append(parts, e.Invalid...)
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrMissingSetting and ErrInvalidSetting.
func (e *ValidationError) Unwrap() []error {
	var errs []error
	if len(e.Missing) > 0 {
		errs = append(errs, ErrMissingSetting)
	}
	if len(e.Invalid) > 0 {
		errs = append(errs, ErrInvalidSetting)
	}
	return errs
}

// Validate checks the configuration and returns a *ValidationError
// describing every problem, or nil.
func (c *Config) Validate() error {
	verr := &ValidationError{}
	invalid := func(format string, args ...any) {
		verr.Invalid = append(verr.Invalid, fmt.Sprintf(format, args...))
	}

	if c.Bus.Host == "" && !c.Bus.Discover.Enabled {
		verr.Missing = append(verr.Missing, EnvBrokerHost)
	}
	if c.Bus.Username == "" {
		verr.Missing = append(verr.Missing, EnvUsername)
	}
	if c.Bus.Password == "" {
		verr.Missing = append(verr.Missing, EnvPassword)
	}

	switch c.Bus.Driver {
	case transport.DriverMQTT, transport.DriverNATS:
	default:
		invalid("bus.driver %q (must be mqtt or nats)", c.Bus.Driver)
	}
	if c.Bus.Port < 1 || c.Bus.Port > 65535 {
		invalid("bus.port %d out of range", c.Bus.Port)
	}
	if _, err := transport.ParseQoS(c.Bus.QoS); err != nil {
		invalid("bus.qos: %v", err)
	}
	if _, err := connection.ParsePolicy(c.Bus.Reconnect); err != nil {
		invalid("bus.reconnect: %v", err)
	}
	if c.Bus.Backoff.Multiplier != 0 && c.Bus.Backoff.Multiplier < 1 {
		invalid("bus.backoff.multiplier %v must be at least 1", c.Bus.Backoff.Multiplier)
	}
	if c.Bus.Backoff.Jitter < 0 || c.Bus.Backoff.Jitter > 1 {
		invalid("bus.backoff.jitter %v must be within [0, 1]", c.Bus.Backoff.Jitter)
	}
	if (c.Bus.TLS.CertFile == "") != (c.Bus.TLS.KeyFile == "") {
		invalid("bus.tls.cert_file and bus.tls.key_file must be set together")
	}

	if c.Simulation.IntervalMin <= 0 {
		invalid("simulation.interval_min must be positive")
	}
	if c.Simulation.IntervalMax < c.Simulation.IntervalMin {
		invalid("simulation.interval_max %s is below interval_min %s", c.Simulation.IntervalMax, c.Simulation.IntervalMin)
	}
	if _, err := wire.ParseEncoding(c.Simulation.Encoding); err != nil {
		invalid("simulation.encoding: %v", err)
	}

	if err := c.Catalog().Validate(); err != nil {
		invalid("%v", err)
	}

	if len(verr.Missing) == 0 && len(verr.Invalid) == 0 {
		return nil
	}
	return verr
}

// SelectAssets resolves the operating mode against the configured catalog.
func (c *Config) SelectAssets(id string, all bool) ([]asset.Definition, error) {
	return c.Catalog().Select(id, all)
}

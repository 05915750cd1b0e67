package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables.
const (
	EnvBrokerHost = "MQTT_BROKER_HOST"
	EnvBrokerPort = "MQTT_BROKER_PORT"
	EnvUsername   = "MQTT_USERNAME"
	EnvPassword   = "MQTT_PASSWORD"
	EnvPort       = "PORT"

	EnvNamespace   = "SENSORSIM_NAMESPACE"
	EnvDriver      = "SENSORSIM_DRIVER"
	EnvQoS         = "SENSORSIM_QOS"
	EnvReconnect   = "SENSORSIM_RECONNECT"
	EnvTLS         = "SENSORSIM_TLS"
	EnvTLSCAFile   = "SENSORSIM_TLS_CA_FILE"
	EnvDiscover    = "SENSORSIM_DISCOVER"
	EnvEncoding    = "SENSORSIM_ENCODING"
	EnvIntervalMin = "SENSORSIM_INTERVAL_MIN"
	EnvIntervalMax = "SENSORSIM_INTERVAL_MAX"
	EnvMetricsAddr = "SENSORSIM_METRICS_ADDR"
	EnvCapturePath = "SENSORSIM_CAPTURE_PATH"
)

// LookupFunc returns the value of a variable and whether it is set.
// os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv reads a .env file without touching the process environment.
// A missing file yields an empty map.
func LoadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	vars, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return vars, nil
}

// Lookup returns a LookupFunc that prefers the process environment and
// falls back to dotenv.
func Lookup(dotenv map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

// ApplyEnv overlays the variables found by lookup. Empty values are
// ignored. All malformed values are reported together.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := get(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := get(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str(EnvBrokerHost, &c.Bus.Host)
	integer(EnvBrokerPort, &c.Bus.Port)
	str(EnvUsername, &c.Bus.Username)
	str(EnvPassword, &c.Bus.Password)
	if v, ok := get(EnvPort); ok {
		if _, err := strconv.Atoi(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvPort, err))
		} else {
			c.Liveness.Addr = net.JoinHostPort("", v)
		}
	}

	str(EnvNamespace, &c.Namespace)
	str(EnvDriver, &c.Bus.Driver)
	integer(EnvQoS, &c.Bus.QoS)
	str(EnvReconnect, &c.Bus.Reconnect)
	boolean(EnvTLS, &c.Bus.TLS.Enabled)
	str(EnvTLSCAFile, &c.Bus.TLS.CAFile)
	boolean(EnvDiscover, &c.Bus.Discover.Enabled)
	str(EnvEncoding, &c.Simulation.Encoding)
	duration(EnvIntervalMin, &c.Simulation.IntervalMin)
	duration(EnvIntervalMax, &c.Simulation.IntervalMax)
	str(EnvMetricsAddr, &c.Metrics.Addr)
	str(EnvCapturePath, &c.Capture.Path)

	return errors.Join(errs...)
}

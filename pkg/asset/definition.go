package asset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/uns-lab/sensorsim/pkg/sensor"
)

// Asset errors.
var (
	ErrUnknownAsset      = errors.New("unknown asset")
	ErrInvalidDefinition = errors.New("invalid asset definition")
	ErrNoAssets          = errors.New("no assets selected")
)

// Definition describes one simulated asset. It is immutable once the catalog
// has been loaded.
type Definition struct {
	ID      string   `yaml:"id"`
	Area    string   `yaml:"area"`
	Sensors []string `yaml:"sensors"`
}

// Clone returns a copy that shares no memory with d.
func (d Definition) Clone() Definition {
	d.Sensors = append([]string(nil), d.Sensors...)
	return d
}

// Topic returns the topic for one of the asset's sensors.
func (d Definition) Topic(namespace, sensorName string) string {
	return Topic(namespace, d.Area, d.ID, sensorName)
}

// UnknownSensors returns the configured sensor names that do not resolve to
// a sensor kind. They are skipped at runtime.
func (d Definition) UnknownSensors() []string {
	var out []string
	for _, s := range d.Sensors {
		if !sensor.Known(s) {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that the definition can produce well-formed topics.
func (d Definition) Validate() error {
	if err := validateSegment("id", d.ID); err != nil {
		return err
	}
	if err := validateSegment("area", d.Area); err != nil {
		return fmt.Errorf("asset %s: %w", d.ID, err)
	}
	if len(d.Sensors) == 0 {
		return fmt.Errorf("asset %s: %w: no sensors", d.ID, ErrInvalidDefinition)
	}
	for _, s := range d.Sensors {
		if err := validateSegment("sensor", s); err != nil {
			return fmt.Errorf("asset %s: %w", d.ID, err)
		}
	}
	return nil
}

// validateSegment rejects values that are empty or would break the topic
// hierarchy or act as subscription wildcards.
func validateSegment(field, v string) error {
	if v == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidDefinition, field)
	}
	if strings.ContainsAny(v, "/+#") {
		return fmt.Errorf("%w: %s %q contains '/', '+' or '#'", ErrInvalidDefinition, field, v)
	}
	return nil
}

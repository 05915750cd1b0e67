package asset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultNamespace is the namespace root of the built-in catalog.
const DefaultNamespace = "LH/LBC/Biberach"

// Catalog is the set of assets a process may simulate.
type Catalog struct {
	Namespace string       `yaml:"namespace"`
	Assets    []Definition `yaml:"assets"`
}

// DefaultCatalog returns the built-in catalog: a milling machine, a packaging
// line and a warehouse robot.
func DefaultCatalog() Catalog {
	return Catalog{
		Namespace: DefaultNamespace,
		Assets: []Definition{
			{
				ID:      "Fraesmaschine_01",
				Area:    "Produktion_A",
				Sensors: []string{"Temperature", "Pressure", "Vibration", "Status", "PartsCounter"},
			},
			{
				ID:      "Verpackungslinie_07",
				Area:    "Logistik",
				Sensors: []string{"BeltSpeed", "Status", "PackagesPerMinute"},
			},
			{
				ID:      "Lagerroboter_03",
				Area:    "Lagerhalle_B",
				Sensors: []string{"BatteryLevel", "PositionX", "PositionY", "Status"},
			},
		},
	}
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks the namespace and every definition, and rejects duplicate
// ids.
func (c Catalog) Validate() error {
	if err := ValidateNamespace(c.Namespace); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Assets))
	for _, d := range c.Assets {
		if err := d.Validate(); err != nil {
			return err
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate asset id %q", ErrInvalidDefinition, d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

// IDs returns the asset ids in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c.Assets))
	for i, d := range c.Assets {
		ids[i] = d.ID
	}
	return ids
}

// Lookup returns the definition with the given id.
func (c Catalog) Lookup(id string) (Definition, error) {
	for _, d := range c.Assets {
		if d.ID == id {
			return d.Clone(), nil
		}
	}
	return Definition{}, fmt.Errorf("%w %q", ErrUnknownAsset, id)
}

// Select resolves the operating mode: every asset when all is set, otherwise
// the single asset named id.
func (c Catalog) Select(id string, all bool) ([]Definition, error) {
	if all {
		if len(c.Assets) == 0 {
			return nil, ErrNoAssets
		}
		out := make([]Definition, len(c.Assets))
		for i, d := range c.Assets {
			out[i] = d.Clone()
		}
		return out, nil
	}
	if id == "" {
		return nil, fmt.Errorf("%w: no asset named", ErrNoAssets)
	}
	d, err := c.Lookup(id)
	if err != nil {
		return nil, err
	}
	return []Definition{d}, nil
}

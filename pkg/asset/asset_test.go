package asset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopic(t *testing.T) {
	got := Topic("root", "area", "Line_01", "Status")
	assert.Equal(t, "root/area/Line_01/Status", got)

	// Derivation is pure.
	assert.Equal(t, got, Topic("root", "area", "Line_01", "Status"))

	d := Definition{ID: "Fraesmaschine_01", Area: "Produktion_A"}
	assert.Equal(t, "LH/LBC/Biberach/Produktion_A/Fraesmaschine_01/Temperature",
		d.Topic(DefaultNamespace, "Temperature"))
}

func TestValidateNamespace(t *testing.T) {
	assert.NoError(t, ValidateNamespace("LH/LBC/Biberach"))
	assert.NoError(t, ValidateNamespace("root"))

	for _, ns := range []string{"", "a//b", "/a", "a/", "a/+/b", "#"} {
		err := ValidateNamespace(ns)
		assert.ErrorIs(t, err, ErrInvalidDefinition, "namespace %q", ns)
	}
}

func TestDefinitionValidate(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		ok   bool
	}{
		{"Valid", Definition{ID: "a", Area: "b", Sensors: []string{"Status"}}, true},
		{"UnknownSensorAllowed", Definition{ID: "a", Area: "b", Sensors: []string{"Humidity"}}, true},
		{"EmptyID", Definition{Area: "b", Sensors: []string{"Status"}}, false},
		{"EmptyArea", Definition{ID: "a", Sensors: []string{"Status"}}, false},
		{"NoSensors", Definition{ID: "a", Area: "b"}, false},
		{"SlashInID", Definition{ID: "a/b", Area: "b", Sensors: []string{"Status"}}, false},
		{"WildcardSensor", Definition{ID: "a", Area: "b", Sensors: []string{"#"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidDefinition)
			}
		})
	}
}

func TestUnknownSensors(t *testing.T) {
	d := Definition{ID: "a", Area: "b", Sensors: []string{"Status", "Humidity", "Druck", "Noise"}}
	assert.Equal(t, []string{"Humidity", "Noise"}, d.UnknownSensors())
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"Fraesmaschine_01", "Verpackungslinie_07", "Lagerroboter_03"}, c.IDs())
	for _, d := range c.Assets {
		assert.Empty(t, d.UnknownSensors(), "asset %s", d.ID)
	}
}

func TestCatalogLookup(t *testing.T) {
	c := DefaultCatalog()

	d, err := c.Lookup("Logistik")
	assert.ErrorIs(t, err, ErrUnknownAsset)
	assert.Contains(t, err.Error(), "Verpackungslinie_07")
	assert.Empty(t, d.ID)

	d, err = c.Lookup("Verpackungslinie_07")
	require.NoError(t, err)
	assert.Equal(t, "Logistik", d.Area)

	// Lookup hands out copies.
	d.Sensors[0] = "Mutated"
	again, _ := c.Lookup("Verpackungslinie_07")
	assert.Equal(t, "BeltSpeed", again.Sensors[0])
}

func TestCatalogSelect(t *testing.T) {
	c := DefaultCatalog()

	t.Run("All", func(t *testing.T) {
		defs, err := c.Select("", true)
		require.NoError(t, err)
		assert.Len(t, defs, 3)
	})

	t.Run("Single", func(t *testing.T) {
		defs, err := c.Select("Lagerroboter_03", false)
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, "Lagerroboter_03", defs[0].ID)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := c.Select("Robot_99", false)
		assert.True(t, errors.Is(err, ErrUnknownAsset))
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := c.Select("", false)
		assert.ErrorIs(t, err, ErrNoAssets)
	})

	t.Run("EmptyCatalog", func(t *testing.T) {
		_, err := Catalog{Namespace: "root"}.Select("", true)
		assert.ErrorIs(t, err, ErrNoAssets)
	})
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	err := os.WriteFile(path, []byte(`
namespace: root/plant
assets:
  - id: Line_01
    area: Assembly
    sensors: [Status, PartsCounter]
  - id: Robot_02
    area: Warehouse
    sensors:
      - BatteryLevel
`), 0o644)
	require.NoError(t, err)

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "root/plant", c.Namespace)
	require.Len(t, c.Assets, 2)
	assert.Equal(t, []string{"Status", "PartsCounter"}, c.Assets[0].Sensors)
	assert.Equal(t, "root/plant/Warehouse/Robot_02/BatteryLevel", c.Assets[1].Topic(c.Namespace, "BatteryLevel"))
}

func TestParseCatalogErrors(t *testing.T) {
	_, err := ParseCatalog([]byte("assets: [}"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte(`
namespace: root
assets:
  - {id: A, area: X, sensors: [Status]}
  - {id: A, area: Y, sensors: [Status]}
`))
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

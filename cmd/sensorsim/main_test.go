package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uns-lab/sensorsim/internal/config"
	"github.com/uns-lab/sensorsim/pkg/log"
)

// clearBusEnv makes the tests independent of the developer's environment.
func clearBusEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvBrokerHost, config.EnvBrokerPort, config.EnvUsername, config.EnvPassword, config.EnvNamespace} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "sensorsim 0.1.0 (built dev, commit unknown)\n", out)
}

func TestAssets(t *testing.T) {
	clearBusEnv(t)
	code, out, _ := execute(t, "assets", "--env", "")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Fraesmaschine_01")
	assert.Contains(t, out, "LH/LBC/Biberach/Produktion_A/Fraesmaschine_01")
	assert.Contains(t, out, "BeltSpeed,Status,PackagesPerMinute")
}

func TestRunMissingCredentials(t *testing.T) {
	clearBusEnv(t)
	code, _, errOut := execute(t, "run", "Fraesmaschine_01", "--env", "")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "missing MQTT_BROKER_HOST, MQTT_USERNAME, MQTT_PASSWORD")
}

func TestRunUnknownAsset(t *testing.T) {
	clearBusEnv(t)
	t.Setenv(config.EnvBrokerHost, "broker.test")
	t.Setenv(config.EnvUsername, "sim")
	t.Setenv(config.EnvPassword, "secret")

	code, _, errOut := execute(t, "run", "Line_99", "--env", "")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown asset")
	assert.Contains(t, errOut, "available assets: Fraesmaschine_01, Verpackungslinie_07, Lagerroboter_03")
	assert.Equal(t, 1, strings.Count(errOut, "Verpackungslinie_07"), "asset list printed once")

	code, _, errOut = execute(t, "run", "--env", "")
	assert.Equal(t, 1, code)
	assert.Equal(t, 1, strings.Count(errOut, "available"))

	code, _, errOut = execute(t, "run", "Line_99", "--all", "--env", "")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "not both")
}

func TestRunInvalidLogLevel(t *testing.T) {
	clearBusEnv(t)
	t.Setenv(config.EnvBrokerHost, "broker.test")
	t.Setenv(config.EnvUsername, "sim")
	t.Setenv(config.EnvPassword, "secret")

	code, _, errOut := execute(t, "run", "--all", "--env", "", "--log-level", "loud")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid log level")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "debug", "json")
	require.NoError(t, err)
	logger.Debug("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = newLogger(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestCaptureStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet"+log.FileExtension)
	fl, err := log.NewFileLogger(path)
	require.NoError(t, err)
	session := log.NewSession(fl, "Line_01", "area")
	session.Publish(log.PublishEvent{Topic: "root/area/Line_01/Status", Sensor: "Status", Latency: time.Millisecond}, nil)
	require.NoError(t, fl.Close())

	code, out, errOut := execute(t, "capture", "stats", path)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Total Events: 1")
	assert.Contains(t, out, "Line_01 (area)")

	code, out, _ = execute(t, "capture", "view", "--outcome", "delivered", path)
	require.Equal(t, 0, code)
	assert.True(t, strings.Contains(out, "Topic: root/area/Line_01/Status"))

	code, _, errOut = execute(t, "capture", "filter", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "output")
}

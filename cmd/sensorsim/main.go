// Command sensorsim simulates a fleet of industrial assets that publish
// sensor readings to a message broker.
//
// Usage:
//
//	sensorsim <command> [flags]
//
// Commands:
//
//	run       Simulate one asset, or every asset with --all
//	assets    List the configured assets
//	capture   Inspect capture files (view, stats, export, filter)
//	version   Show version information
//
// Examples:
//
//	# Simulate the milling machine
//	sensorsim run Fraesmaschine_01
//
//	# Simulate every asset with a config file and an interactive console
//	sensorsim run --all --config sensorsim.yaml --interactive
//
//	# Summarize a capture file
//	sensorsim capture stats fleet.scap
//
// Broker credentials are read from MQTT_BROKER_HOST, MQTT_BROKER_PORT,
// MQTT_USERNAME and MQTT_PASSWORD, or from a .env file.
package main

import (
	"fmt"
	"io"
	"os"
)

// Version information - set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

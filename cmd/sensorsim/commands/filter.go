package commands

import (
	"fmt"
	"io"

	"github.com/uns-lab/sensorsim/pkg/log"
)

// RunFilter writes the matching events of the capture file to a new
// capture file and reports the count on w.
func RunFilter(path, output string, opts FilterOptions, w io.Writer) error {
	if output == "" {
		return fmt.Errorf("output file required")
	}
	filter, err := opts.Build()
	if err != nil {
		return err
	}

	logger, err := log.NewFileLogger(output)
	if err != nil {
		return fmt.Errorf("failed to create output logger: %w", err)
	}

	count := 0
	err = eachEvent(path, filter, func(event log.Event) error {
		logger.Log(event)
		count++
		return nil
	})
	if cerr := logger.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if dropped := logger.Dropped(); dropped > 0 {
		return fmt.Errorf("failed to write %d of %d events", dropped, count)
	}

	fmt.Fprintf(w, "Filtered %d events to %s\n", count, output)
	return nil
}

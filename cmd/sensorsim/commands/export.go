package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/uns-lab/sensorsim/pkg/log"
)

// RunExport exports the matching events to the specified format. An empty
// output writes to w.
func RunExport(path, format, output string, opts FilterOptions, w io.Writer) error {
	filter, err := opts.Build()
	if err != nil {
		return err
	}

	switch format {
	case "jsonl", "csv":
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "csv" {
		return exportCSV(path, filter, w)
	}
	return exportJSONL(path, filter, w)
}

func exportJSONL(path string, filter log.Filter, w io.Writer) error {
	encoder := json.NewEncoder(w)
	return eachEvent(path, filter, func(event log.Event) error {
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
		return nil
	})
}

func exportCSV(path string, filter log.Filter, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session_id", "asset_id", "area", "layer", "category", "type", "topic", "outcome", "latency_us", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	return eachEvent(path, filter, func(event log.Event) error {
		eventType := "unknown"
		var topic, outcome, latency, detail string
		switch {
		case event.Publish != nil:
			eventType = "publish"
			topic = event.Publish.Topic
			outcome = event.Publish.Outcome.String()
			latency = strconv.FormatInt(event.Publish.Latency.Microseconds(), 10)
			detail = event.Publish.Reason
		case event.StateChange != nil:
			eventType = "state"
			detail = event.StateChange.OldState + "->" + event.StateChange.NewState
		case event.Error != nil:
			eventType = "error"
			detail = event.Error.Message
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.SessionID,
			event.AssetID,
			event.Area,
			event.Layer.String(),
			event.Category.String(),
			eventType,
			topic,
			outcome,
			latency,
			detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		return nil
	})
}

// Package commands implements the sensorsim capture commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/uns-lab/sensorsim/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] asset LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	var typeLabel string
	switch {
	case event.Publish != nil:
		typeLabel = "Publish"
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [session:%s] %s %s %s\n", ts, shortenID(event.SessionID), event.AssetID, event.Layer.String(), typeLabel)

	switch {
	case event.Publish != nil:
		formatPublishDetails(w, event.Publish)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatPublishDetails(w io.Writer, p *log.PublishEvent) {
	fmt.Fprintf(w, "  Topic: %s\n", p.Topic)
	fmt.Fprintf(w, "  QoS: %d  Outcome: %s", p.QoS, p.Outcome.String())
	if p.Latency > 0 {
		fmt.Fprintf(w, "  Latency: %s", formatDuration(p.Latency))
	}
	fmt.Fprintln(w)
	if len(p.Payload) > 0 {
		if p.Encoding == "json" {
			fmt.Fprintf(w, "  Payload: %s\n", p.Payload)
		} else {
			fmt.Fprintf(w, "  Payload: %d bytes (%s)\n", len(p.Payload), p.Encoding)
		}
	}
	if p.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", p.Reason)
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	oldState := sc.OldState
	if oldState == "" {
		oldState = "-"
	}
	fmt.Fprintf(w, "  %s: %s -> %s\n", sc.Entity.String(), oldState, sc.NewState)
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", e.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", e.Context)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	default:
		return d.Round(time.Millisecond).String()
	}
}

// parseLayer parses a layer string (case-insensitive).
func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "wire":
		return log.LayerWire, nil
	case "simulation":
		return log.LayerSimulation, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, wire, or simulation)", s)
	}
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "publish":
		return log.CategoryPublish, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be publish, state, or error)", s)
	}
}

// parseOutcome parses a publish outcome string (case-insensitive).
func parseOutcome(s string) (log.Outcome, error) {
	switch strings.ToLower(s) {
	case "delivered":
		return log.OutcomeDelivered, nil
	case "failed":
		return log.OutcomeFailed, nil
	default:
		return 0, fmt.Errorf("invalid outcome: %s (must be delivered or failed)", s)
	}
}

// FilterOptions are the filter flags shared by view, export and filter.
type FilterOptions struct {
	SessionID string
	AssetID   string
	Sensor    string
	Layer     string
	Category  string
	Outcome   string
	TimeStart string
	TimeEnd   string
}

// Build converts the flag values to a log.Filter.
func (o FilterOptions) Build() (log.Filter, error) {
	filter := log.Filter{
		SessionID: o.SessionID,
		AssetID:   o.AssetID,
		Sensor:    o.Sensor,
	}

	if o.Layer != "" {
		l, err := parseLayer(o.Layer)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Layer = &l
	}
	if o.Category != "" {
		c, err := parseCategory(o.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}
	if o.Outcome != "" {
		out, err := parseOutcome(o.Outcome)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Outcome = &out
	}
	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}
	return filter, nil
}

// eachEvent calls fn for every event of the capture file matching filter.
func eachEvent(path string, filter log.Filter, fn func(log.Event) error) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}

// RunView prints the matching events of the capture file.
func RunView(path string, opts FilterOptions, output io.Writer) error {
	filter, err := opts.Build()
	if err != nil {
		return err
	}
	return eachEvent(path, filter, func(event log.Event) error {
		formatEvent(output, event)
		return nil
	})
}

package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/uns-lab/sensorsim/pkg/log"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents      int
	EventsByLayer    map[log.Layer]int
	EventsByCategory map[log.Category]int
	Assets           map[string]*AssetStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// AssetStats holds statistics for a single asset.
type AssetStats struct {
	Area         string
	Sessions     map[string]bool
	Delivered    int
	Failed       int
	StateChanges int
	TotalLatency time.Duration
	MaxLatency   time.Duration
	LastState    string
	FirstSeen    time.Time
	LastSeen     time.Time
}

// CollectStats reads the capture file and aggregates it.
func CollectStats(path string) (*Stats, error) {
	stats := &Stats{
		EventsByLayer:    make(map[log.Layer]int),
		EventsByCategory: make(map[log.Category]int),
		Assets:           make(map[string]*AssetStats),
	}

	err := eachEvent(path, log.Filter{}, func(event log.Event) error {
		stats.TotalEvents++
		stats.EventsByLayer[event.Layer]++
		stats.EventsByCategory[event.Category]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		as, ok := stats.Assets[event.AssetID]
		if !ok {
			as = &AssetStats{
				Area:      event.Area,
				Sessions:  make(map[string]bool),
				FirstSeen: event.Timestamp,
			}
			stats.Assets[event.AssetID] = as
		}
		as.Sessions[event.SessionID] = true
		if event.Timestamp.After(as.LastSeen) {
			as.LastSeen = event.Timestamp
		}

		switch {
		case event.Publish != nil:
			if event.Publish.Outcome == log.OutcomeDelivered {
				as.Delivered++
			} else {
				as.Failed++
			}
			as.TotalLatency += event.Publish.Latency
			as.MaxLatency = max(as.MaxLatency, event.Publish.Latency)
		case event.StateChange != nil:
			as.StateChanges++
			if event.StateChange.Entity == log.StateEntityConnection {
				as.LastState = event.StateChange.NewState
			}
		case event.Error != nil:
			stats.Errors++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// RunStats analyzes the capture file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Sensor Simulator Capture Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerWire, log.LayerSimulation} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryPublish, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Assets: %d\n", len(stats.Assets))
	if len(stats.Assets) > 0 {
		ids := make([]string, 0, len(stats.Assets))
		for id := range stats.Assets {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		fmt.Fprintln(w)
		for _, id := range ids {
			as := stats.Assets[id]
			fmt.Fprintf(w, "  %s (%s)\n", id, as.Area)
			fmt.Fprintf(w, "           Sessions: %d, active %s\n",
				len(as.Sessions), as.LastSeen.Sub(as.FirstSeen).Round(time.Millisecond))
			fmt.Fprintf(w, "           Published: %d delivered, %d failed\n", as.Delivered, as.Failed)
			if n := as.Delivered + as.Failed; n > 0 {
				fmt.Fprintf(w, "           Latency: avg %s, max %s\n",
					formatDuration(as.TotalLatency/time.Duration(n)), formatDuration(as.MaxLatency))
			}
			if as.StateChanges > 0 {
				fmt.Fprintf(w, "           State changes: %d", as.StateChanges)
				if as.LastState != "" {
					fmt.Fprintf(w, " (last connection state: %s)", as.LastState)
				}
				fmt.Fprintln(w)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}

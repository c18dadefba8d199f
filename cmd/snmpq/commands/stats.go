package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/snmp-query/snmpq-go/pkg/log"
	"github.com/snmp-query/snmpq-go/pkg/wire"
)

// Stats holds aggregate statistics about an event file.
type Stats struct {
	TotalEvents      int
	EventsByStage    map[log.Stage]int
	EventsByCategory map[log.Category]int
	QueriesByKind    map[wire.Kind]int
	Targets          map[string]*TargetStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// TargetStats holds statistics for one agent.
type TargetStats struct {
	Queries   int
	Failures  int
	Bindings  int
	TotalTime time.Duration
	Slowest   time.Duration
}

// RunStats analyzes the event file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByStage:    make(map[log.Stage]int),
		EventsByCategory: make(map[log.Category]int),
		QueriesByKind:    make(map[wire.Kind]int),
		Targets:          make(map[string]*TargetStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByStage[event.Stage]++
	s.EventsByCategory[event.Category]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	if event.Error != nil {
		s.Errors++
	}
	if event.Target == "" {
		return
	}

	ts, ok := s.Targets[event.Target]
	if !ok {
		ts = &TargetStats{}
		s.Targets[event.Target] = ts
	}
	switch {
	case event.Request != nil:
		ts.Queries++
		s.QueriesByKind[event.Kind]++
	case event.Response != nil:
		ts.Bindings += event.Response.Bindings
		ts.TotalTime += event.Response.Duration
		if event.Response.Duration > ts.Slowest {
			ts.Slowest = event.Response.Duration
		}
	case event.Error != nil:
		ts.Failures++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== snmpq Query Log Statistics ===")
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

	fmt.Fprintln(w, "Events by Stage:")
	for _, st := range []log.Stage{log.StageResolve, log.StageExecute, log.StageNormalize} {
		if count := stats.EventsByStage[st]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", st.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryRequest, log.CategoryResponse, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Queries by Kind:")
	for _, k := range []wire.Kind{wire.KindGet, wire.KindWalk, wire.KindBulkWalk} {
		if count := stats.QueriesByKind[k]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", k.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Targets: %d\n", len(stats.Targets))
	if len(stats.Targets) > 0 {
		targets := make([]string, 0, len(stats.Targets))
		for t := range stats.Targets {
			targets = append(targets, t)
		}
		sort.Strings(targets)

		fmt.Fprintln(w)
		for _, t := range targets {
			ts := stats.Targets[t]
			fmt.Fprintf(w, "  %s: %d queries, %d failed, %d bindings\n", t, ts.Queries, ts.Failures, ts.Bindings)
			if ok := ts.Queries - ts.Failures; ok > 0 {
				fmt.Fprintf(w, "           avg %s, slowest %s\n",
					formatDuration(ts.TotalTime/time.Duration(ok)), formatDuration(ts.Slowest))
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}

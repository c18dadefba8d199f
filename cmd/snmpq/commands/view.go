// Package commands implements the snmpq log subcommands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/snmp-query/snmpq-go/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [req:id] DIRECTION STAGE Category Kind target
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [req:%s] %-5s %s %s", ts, shortenID(event.RequestID),
		event.Direction.String(), event.Stage.String(), event.Category.String())
	if event.Kind.IsValid() {
		fmt.Fprintf(w, " %s", event.Kind)
	}
	if event.Target != "" {
		fmt.Fprintf(w, " %s", event.Target)
	}
	if event.Version != 0 {
		fmt.Fprintf(w, " (%s)", event.Version)
	}
	fmt.Fprintln(w)

	switch {
	case event.Request != nil:
		formatRequestDetails(w, event.Request)
	case event.Response != nil:
		formatResponseDetails(w, event.Response)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a request ID.
func shortenID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatRequestDetails(w io.Writer, req *log.RequestEvent) {
	if len(req.OIDs) > 0 {
		fmt.Fprintf(w, "  OIDs: %s\n", strings.Join(req.OIDs, ", "))
	}
	if req.SubRequests > 1 {
		fmt.Fprintf(w, "  Sub-requests: %d\n", req.SubRequests)
	}
}

func formatResponseDetails(w io.Writer, resp *log.ResponseEvent) {
	fmt.Fprintf(w, "  Bindings: %d\n", resp.Bindings)
	fmt.Fprintf(w, "  Duration: %s\n", formatDuration(resp.Duration))
	if resp.Untranslated > 0 {
		fmt.Fprintf(w, "  Untranslated: %d\n", resp.Untranslated)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Status != nil {
		fmt.Fprintf(w, "  Status: %s (%d)\n", err.Status.String(), *err.Status)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseStageFlag parses a stage name (case-insensitive).
func ParseStageFlag(s string) (log.Stage, error) {
	st, ok := log.ParseStage(s)
	if !ok {
		return 0, fmt.Errorf("invalid stage: %s (must be resolve, execute, or normalize)", s)
	}
	return st, nil
}

// ParseDirectionFlag parses a direction name (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	case "local":
		return log.DirectionLocal, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in, out, or local)", s)
	}
}

// ParseCategoryFlag parses a category name (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "request":
		return log.CategoryRequest, nil
	case "response":
		return log.CategoryResponse, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be request, response, or error)", s)
	}
}

// RunView prints every event of the file that matches filter.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
	return nil
}

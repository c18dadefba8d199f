package commands

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/snmp-query/snmpq-go/pkg/log"
)

// RunExport writes the matching events of path as jsonl or csv.
func RunExport(path, format string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

// eachEvent calls fn for every remaining event of reader.
func eachEvent(reader *log.Reader, fn func(log.Event) error) error {
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read event: %w", err)
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	return eachEvent(reader, func(event log.Event) error {
		return enc.Encode(event)
	})
}

var csvHeader = []string{"timestamp", "request_id", "direction", "stage", "category", "kind", "target", "bindings", "duration_ms", "error"}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	err := eachEvent(reader, func(event log.Event) error {
		return cw.Write(csvRow(event))
	})
	cw.Flush()
	if err != nil {
		return err
	}
	return cw.Error()
}

func csvRow(event log.Event) []string {
	var kind, bindings, duration, message string
	if event.Kind.IsValid() {
		kind = event.Kind.String()
	}
	if r := event.Response; r != nil {
		bindings = strconv.Itoa(r.Bindings)
		duration = strconv.FormatFloat(float64(r.Duration.Microseconds())/1000, 'f', 3, 64)
	}
	if event.Error != nil {
		message = event.Error.Message
	}
	return []string{
		event.Timestamp.UTC().Format(time.RFC3339Nano),
		event.RequestID,
		event.Direction.String(),
		event.Stage.String(),
		event.Category.String(),
		kind,
		event.Target,
		bindings,
		duration,
		message,
	}
}

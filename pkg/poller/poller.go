// Package poller runs one query pipeline per device in parallel.
//
// Devices share nothing: each task gets its own Device and writes only to
// its own Report slot. A failing device never cancels its siblings.
package poller

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/snmp-query/snmpq-go/pkg/device"
	"github.com/snmp-query/snmpq-go/pkg/normalize"
)

// DefaultConcurrency is the number of devices polled at once.
const DefaultConcurrency = 16

// Task is the per-device query pipeline.
type Task func(ctx context.Context, dev *device.Device) (normalize.Collection, error)

// Interfaces is the Task that fetches the interface table.
func Interfaces(ctx context.Context, dev *device.Device) (normalize.Collection, error) {
	return dev.Interfaces(ctx)
}

// Report is the outcome for one device.
type Report struct {
	Host    string
	Rows    normalize.Collection
	Err     error
	Started time.Time
	Elapsed time.Duration
}

// Config configures a Poller.
type Config struct {
	// Concurrency caps the number of devices polled at once (default: 16).
	Concurrency int

	// Timeout bounds each device's task. Zero means no per-device limit.
	Timeout time.Duration

	// Logger for debug output (optional).
	Logger *slog.Logger
}

// Poller fans a Task out across devices.
type Poller struct {
	config Config
}

// New creates a Poller.
func New(config Config) *Poller {
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	return &Poller{config: config}
}

// Poll runs task once for every device and returns one Report per device,
// in device order. It returns early only if ctx is cancelled, in which case
// unfinished devices report ctx.Err().
func (p *Poller) Poll(ctx context.Context, devices []*device.Device, task Task) []Report {
	reports := make([]Report, len(devices))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.config.Concurrency)

	for i, dev := range devices {
		i, dev := i, dev
		reports[i].Host = dev.Host()
		eg.Go(func() error {
			reports[i] = p.pollOne(egCtx, dev, task)
			return nil
		})
	}
	_ = eg.Wait()
	return reports
}

func (p *Poller) pollOne(ctx context.Context, dev *device.Device, task Task) Report {
	r := Report{Host: dev.Host(), Started: time.Now()}
	if err := ctx.Err(); err != nil {
		r.Err = err
		return r
	}

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	r.Rows, r.Err = task(ctx, dev)
	r.Elapsed = time.Since(r.Started)

	if p.config.Logger != nil {
		if r.Err != nil {
			p.config.Logger.Warn("poll failed", "host", r.Host, "error", r.Err, "elapsed", r.Elapsed)
		} else {
			p.config.Logger.Debug("poll done", "host", r.Host, "rows", len(r.Rows), "elapsed", r.Elapsed)
		}
	}
	return r
}

// Run polls every interval until ctx is done, handing each round's reports
// to sink. The first round starts immediately.
func (p *Poller) Run(ctx context.Context, interval time.Duration, devices []*device.Device, task Task, sink func([]Report)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		sink(p.Poll(ctx, devices, task))
		if err := ctx.Err(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Failed returns the reports that carry an error.
func Failed(reports []Report) []Report {
	var out []Report
	for _, r := range reports {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

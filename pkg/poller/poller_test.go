package poller_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/snmp-query/snmpq-go/pkg/device"
	"github.com/snmp-query/snmpq-go/pkg/normalize"
	"github.com/snmp-query/snmpq-go/pkg/poller"
	"github.com/snmp-query/snmpq-go/pkg/query"
	"github.com/snmp-query/snmpq-go/pkg/wire"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// hostEngine answers sysName.0 with the target host and fails for hosts in
// down.
type hostEngine struct {
	down     map[string]bool
	delay    time.Duration
	inflight atomic.Int32
	peak     atomic.Int32
}

func (e *hostEngine) Get(ctx context.Context, sess query.Session, oids []string) ([]wire.Binding, error) {
	n := e.inflight.Add(1)
	defer e.inflight.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(e.delay):
	}

	if e.down[sess.Target.Host] {
		return nil, errors.New("request timeout")
	}
	out := make([]wire.Binding, len(oids))
	for i, oid := range oids {
		out[i] = wire.Binding{Name: oid, Value: sess.Target.Host}
	}
	return out, nil
}

func (e *hostEngine) GetNext(context.Context, query.Session, []string) ([]wire.Binding, error) {
	return nil, errors.New("not used")
}

func (e *hostEngine) BulkWalk(context.Context, query.Session, string) ([]wire.Binding, error) {
	return nil, errors.New("not used")
}

func devices(t *testing.T, exec *query.Executor, hosts ...string) []*device.Device {
	t.Helper()
	creds, err := wire.NewCredentials(wire.Version2c, "public")
	require.NoError(t, err)

	out := make([]*device.Device, len(hosts))
	for i, h := range hosts {
		out[i], err = device.New(h, creds, exec)
		require.NoError(t, err)
	}
	return out
}

func nameTask(ctx context.Context, dev *device.Device) (normalize.Collection, error) {
	return dev.Get(ctx, device.SysName)
}

func TestPollReportsPerDeviceInOrder(t *testing.T) {
	eng := &hostEngine{down: map[string]bool{"b": true}}
	devs := devices(t, query.NewExecutor(eng, nil), "a", "b", "c")

	reports := poller.New(poller.Config{}).Poll(context.Background(), devs, nameTask)

	require.Len(t, reports, 3)
	assert.Equal(t, "a", reports[0].Host)
	assert.NoError(t, reports[0].Err)
	assert.Equal(t, normalize.Collection{{"sysName": "a"}}, reports[0].Rows)

	assert.Equal(t, "b", reports[1].Host)
	assert.ErrorIs(t, reports[1].Err, query.ErrQueryFailed)
	assert.Nil(t, reports[1].Rows)

	assert.Equal(t, normalize.Collection{{"sysName": "c"}}, reports[2].Rows)

	failed := poller.Failed(reports)
	require.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].Host)
}

func TestPollRespectsConcurrencyLimit(t *testing.T) {
	eng := &hostEngine{delay: 20 * time.Millisecond}
	devs := devices(t, query.NewExecutor(eng, nil), "a", "b", "c", "d", "e", "f")

	reports := poller.New(poller.Config{Concurrency: 2}).Poll(context.Background(), devs, nameTask)

	assert.Empty(t, poller.Failed(reports))
	assert.LessOrEqual(t, eng.peak.Load(), int32(2))
}

func TestPollPerDeviceTimeout(t *testing.T) {
	eng := &hostEngine{delay: time.Second}
	devs := devices(t, query.NewExecutor(eng, nil), "slow")

	reports := poller.New(poller.Config{Timeout: 10 * time.Millisecond}).Poll(context.Background(), devs, nameTask)

	require.Len(t, reports, 1)
	assert.ErrorIs(t, reports[0].Err, context.DeadlineExceeded)
}

func TestPollCancelledContext(t *testing.T) {
	eng := &hostEngine{}
	devs := devices(t, query.NewExecutor(eng, nil), "a", "b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reports := poller.New(poller.Config{}).Poll(ctx, devs, nameTask)

	for _, r := range reports {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	eng := &hostEngine{}
	devs := devices(t, query.NewExecutor(eng, nil), "a")

	ctx, cancel := context.WithCancel(context.Background())
	var (
		mu     sync.Mutex
		rounds int
	)
	err := poller.New(poller.Config{}).Run(ctx, 5*time.Millisecond, devs, nameTask, func(r []poller.Report) {
		mu.Lock()
		defer mu.Unlock()
		rounds++
		if rounds == 3 {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, rounds)
}

package query_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/snmp-query/snmpq-go/pkg/ident"
	"github.com/snmp-query/snmpq-go/pkg/log"
	"github.com/snmp-query/snmpq-go/pkg/query"
	"github.com/snmp-query/snmpq-go/pkg/wire"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Get(ctx context.Context, sess query.Session, oids []string) ([]wire.Binding, error) {
	args := m.Called(ctx, sess, oids)
	b, _ := args.Get(0).([]wire.Binding)
	return b, args.Error(1)
}

func (m *mockEngine) GetNext(ctx context.Context, sess query.Session, oids []string) ([]wire.Binding, error) {
	args := m.Called(ctx, sess, oids)
	b, _ := args.Get(0).([]wire.Binding)
	return b, args.Error(1)
}

func (m *mockEngine) BulkWalk(ctx context.Context, sess query.Session, root string) ([]wire.Binding, error) {
	args := m.Called(ctx, sess, root)
	b, _ := args.Get(0).([]wire.Binding)
	return b, args.Error(1)
}

type recordingLogger struct {
	events []log.Event
}

func (r *recordingLogger) Log(e log.Event) { r.events = append(r.events, e) }

type recordingObserver struct {
	kinds    []wire.Kind
	bindings []int
	errs     []error
}

func (r *recordingObserver) ObserveQuery(kind wire.Kind, _ string, n int, _ time.Duration, err error) {
	r.kinds = append(r.kinds, kind)
	r.bindings = append(r.bindings, n)
	r.errs = append(r.errs, err)
}

func names(bindings []wire.Binding) []string {
	out := make([]string, len(bindings))
	for i, b := range bindings {
		out[i] = b.Name
	}
	return out
}

func testSession(t *testing.T) query.Session {
	t.Helper()
	creds, err := wire.NewCredentials(wire.Version2c, "public")
	require.NoError(t, err)
	return query.Session{Target: query.Target{Host: "192.0.2.1"}, Credentials: creds}
}

func descriptors(t *testing.T, specs ...ident.Spec) []ident.Descriptor {
	t.Helper()
	descs, err := ident.Resolve(specs)
	require.NoError(t, err)
	return descs
}

func TestExecuteGetTranslatesNames(t *testing.T) {
	eng := &mockEngine{}
	sess := testSession(t)
	eng.On("Get", mock.Anything, sess, []string{"1.3.6.1.2.1.1.5.0"}).
		Return([]wire.Binding{{Name: "1.3.6.1.2.1.1.5.0", Value: []byte("router1")}}, nil).Once()

	exec := query.NewExecutor(eng, nil)
	got, err := exec.Execute(context.Background(), wire.KindGet,
		descriptors(t, ident.Symbol{Namespace: "SNMPv2-MIB", Field: "sysName.0"}), sess)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SNMPv2-MIB::sysName.0", got[0].Name)
	assert.Equal(t, []byte("router1"), got[0].Value)
	eng.AssertExpectations(t)
}

func TestExecuteRawPathAndSymbolInOneRequest(t *testing.T) {
	eng := &mockEngine{}
	sess := testSession(t)
	eng.On("Get", mock.Anything, sess, []string{"1.3.6.1.2.1.1.3.0", "1.3.6.1.2.1.1.5.0"}).
		Return([]wire.Binding{
			{Name: "1.3.6.1.2.1.1.3.0", Value: uint32(4200)},
			{Name: "1.3.6.1.2.1.1.5.0", Value: "router1"},
		}, nil).Once()

	exec := query.NewExecutor(eng, nil)
	got, err := exec.Execute(context.Background(), wire.KindGet, descriptors(t,
		ident.RawPath("1.3.6.1.2.1.1.3.0"),
		ident.Symbol{Namespace: "SNMPv2-MIB", Field: "sysName.0"},
	), sess)

	require.NoError(t, err)
	assert.Equal(t, []string{"SNMPv2-MIB::sysUpTime.0", "SNMPv2-MIB::sysName.0"}, names(got))
}

func TestExecuteEmptyDescriptorsSkipsEngine(t *testing.T) {
	eng := &mockEngine{}
	obs := &recordingObserver{}
	exec := query.NewExecutor(eng, nil, query.WithObserver(obs))

	for _, kind := range []wire.Kind{wire.KindGet, wire.KindWalk, wire.KindBulkWalk} {
		got, err := exec.Execute(context.Background(), kind, nil, testSession(t))
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	eng.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	eng.AssertNotCalled(t, "GetNext", mock.Anything, mock.Anything, mock.Anything)
	eng.AssertNotCalled(t, "BulkWalk", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, obs.kinds)
}

func TestExecuteWalkAdvancesColumnsInLockStep(t *testing.T) {
	eng := &mockEngine{}
	sess := testSession(t)

	const (
		ifIndex = "1.3.6.1.2.1.2.2.1.1"
		ifDescr = "1.3.6.1.2.1.2.2.1.2"
	)
	eng.On("GetNext", mock.Anything, sess, []string{ifIndex, ifDescr}).
		Return([]wire.Binding{
			{Name: ifIndex + ".1", Value: 1},
			{Name: ifDescr + ".1", Value: "eth0"},
		}, nil).Once()
	eng.On("GetNext", mock.Anything, sess, []string{ifIndex + ".1", ifDescr + ".1"}).
		Return([]wire.Binding{
			{Name: ifIndex + ".2", Value: 2},
			{Name: ifDescr + ".2", Value: "eth1"},
		}, nil).Once()
	eng.On("GetNext", mock.Anything, sess, []string{ifIndex + ".2", ifDescr + ".2"}).
		Return([]wire.Binding{
			{Name: ifDescr + ".1", Value: "eth0"},
			{Name: "1.3.6.1.2.1.2.2.1.3.1", Value: 6},
		}, nil).Once()

	exec := query.NewExecutor(eng, nil)
	got, err := exec.Execute(context.Background(), wire.KindWalk, descriptors(t,
		ident.Symbol{Namespace: "IF-MIB", Field: "ifIndex"},
		ident.Symbol{Namespace: "IF-MIB", Field: "ifDescr"},
	), sess)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"IF-MIB::ifIndex.1", "IF-MIB::ifDescr.1",
		"IF-MIB::ifIndex.2", "IF-MIB::ifDescr.2",
	}, names(got))
	eng.AssertExpectations(t)
}

func TestExecuteWalkStopsAtEndOfMibView(t *testing.T) {
	eng := &mockEngine{}
	sess := testSession(t)
	eng.On("GetNext", mock.Anything, sess, []string{"1.3.6.1.4.1"}).
		Return([]wire.Binding{{Name: "1.3.6.1.4.1.9.1", Value: "x"}}, nil).Once()
	eng.On("GetNext", mock.Anything, sess, []string{"1.3.6.1.4.1.9.1"}).
		Return([]wire.Binding{{Name: "1.3.6.1.4.1.9.1", Value: wire.EndOfMibView}}, nil).Once()

	exec := query.NewExecutor(eng, nil)
	got, err := exec.Execute(context.Background(), wire.KindWalk,
		descriptors(t, ident.RawPath("1.3.6.1.4.1")), sess)

	require.NoError(t, err)
	assert.Equal(t, []string{"SNMPv2-SMI::enterprises.9.1"}, names(got))
}

func v1Session(t *testing.T) query.Session {
	t.Helper()
	creds, err := wire.NewCredentials(wire.Version1, "public")
	require.NoError(t, err)
	return query.Session{Target: query.Target{Host: "192.0.2.1"}, Credentials: creds}
}

func TestExecuteWalkV1NoSuchNameEndsColumn(t *testing.T) {
	const ifIndex = "1.3.6.1.2.1.2.2.1.1"
	eng := &mockEngine{}
	sess := v1Session(t)
	eng.On("GetNext", mock.Anything, sess, []string{ifIndex}).
		Return([]wire.Binding{{Name: ifIndex + ".1", Value: 1}}, nil).Once()
	eng.On("GetNext", mock.Anything, sess, []string{ifIndex + ".1"}).
		Return(nil, &query.StatusError{Status: wire.StatusNoSuchName, Index: 1}).Once()

	exec := query.NewExecutor(eng, nil)
	got, err := exec.Execute(context.Background(), wire.KindWalk,
		descriptors(t, ident.Symbol{Namespace: "IF-MIB", Field: "ifIndex"}), sess)

	require.NoError(t, err)
	assert.Equal(t, []string{"IF-MIB::ifIndex.1"}, names(got))
	eng.AssertExpectations(t)
}

func TestExecuteWalkV1NoSuchNameDropsOnlyThatRoot(t *testing.T) {
	const (
		ifIndex = "1.3.6.1.2.1.2.2.1.1"
		ifDescr = "1.3.6.1.2.1.2.2.1.2"
	)
	eng := &mockEngine{}
	sess := v1Session(t)
	eng.On("GetNext", mock.Anything, sess, []string{ifIndex, ifDescr}).
		Return(nil, &query.StatusError{Status: wire.StatusNoSuchName, Index: 1}).Once()
	eng.On("GetNext", mock.Anything, sess, []string{ifDescr}).
		Return([]wire.Binding{{Name: ifDescr + ".1", Value: "eth0"}}, nil).Once()
	eng.On("GetNext", mock.Anything, sess, []string{ifDescr + ".1"}).
		Return(nil, &query.StatusError{Status: wire.StatusNoSuchName}).Once()

	exec := query.NewExecutor(eng, nil)
	got, err := exec.Execute(context.Background(), wire.KindWalk, descriptors(t,
		ident.Symbol{Namespace: "IF-MIB", Field: "ifIndex"},
		ident.Symbol{Namespace: "IF-MIB", Field: "ifDescr"},
	), sess)

	require.NoError(t, err)
	assert.Equal(t, []string{"IF-MIB::ifDescr.1"}, names(got))
	eng.AssertExpectations(t)
}

func TestExecuteWalkV2cNoSuchNameFails(t *testing.T) {
	eng := &mockEngine{}
	sess := testSession(t)
	eng.On("GetNext", mock.Anything, sess, []string{"1.3.6.1.2.1.2.2.1.1"}).
		Return(nil, &query.StatusError{Status: wire.StatusNoSuchName, Index: 1}).Once()

	exec := query.NewExecutor(eng, nil)
	_, err := exec.Execute(context.Background(), wire.KindWalk,
		descriptors(t, ident.Symbol{Namespace: "IF-MIB", Field: "ifIndex"}), sess)

	require.Error(t, err)
	assert.True(t, query.IsQueryFailed(err))
}

func TestExecuteWalkRejectsNonIncreasingOID(t *testing.T) {
	eng := &mockEngine{}
	sess := testSession(t)
	eng.On("GetNext", mock.Anything, sess, []string{"1.3.6.1.2.1.1"}).
		Return([]wire.Binding{{Name: "1.3.6.1.2.1.1.5.0", Value: "a"}}, nil).Once()
	eng.On("GetNext", mock.Anything, sess, []string{"1.3.6.1.2.1.1.5.0"}).
		Return([]wire.Binding{{Name: "1.3.6.1.2.1.1.1.0", Value: "b"}}, nil).Once()

	exec := query.NewExecutor(eng, nil)
	_, err := exec.Execute(context.Background(), wire.KindWalk,
		descriptors(t, ident.RawPath("1.3.6.1.2.1.1")), sess)

	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrQueryFailed)
	assert.Contains(t, err.Error(), "non-increasing")
}

func TestExecuteWalkStepLimit(t *testing.T) {
	eng := &mockEngine{}
	sess := testSession(t)
	eng.On("GetNext", mock.Anything, sess, []string{"1.3.6.1.2.1.1"}).
		Return([]wire.Binding{{Name: "1.3.6.1.2.1.1.1.0", Value: "a"}}, nil).Once()

	exec := query.NewExecutor(eng, nil, query.WithMaxWalkSteps(1))
	_, err := exec.Execute(context.Background(), wire.KindWalk,
		descriptors(t, ident.RawPath("1.3.6.1.2.1.1")), sess)

	require.Error(t, err)
	assert.True(t, query.IsQueryFailed(err))
}

func TestExecuteBulkWalkOneCallPerRoot(t *testing.T) {
	eng := &mockEngine{}
	sess := testSession(t)
	eng.On("BulkWalk", mock.Anything, sess, "1.3.6.1.2.1.2.2.1.1").
		Return([]wire.Binding{
			{Name: "1.3.6.1.2.1.2.2.1.1.1", Value: 1},
			{Name: "1.3.6.1.2.1.2.2.1.1.2", Value: 2},
		}, nil).Once()
	eng.On("BulkWalk", mock.Anything, sess, "1.3.6.1.2.1.2.2.1.2").
		Return([]wire.Binding{
			{Name: "1.3.6.1.2.1.2.2.1.2.1", Value: "eth0"},
			{Name: "1.3.6.1.2.1.2.2.1.2.2", Value: "eth1"},
			{Name: "1.3.6.1.2.1.2.2.1.3.1", Value: 6},
		}, nil).Once()

	exec := query.NewExecutor(eng, nil)
	got, err := exec.Execute(context.Background(), wire.KindBulkWalk, descriptors(t,
		ident.Symbol{Namespace: "IF-MIB", Field: "ifIndex"},
		ident.Symbol{Namespace: "IF-MIB", Field: "ifDescr"},
	), sess)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"IF-MIB::ifIndex.1", "IF-MIB::ifIndex.2",
		"IF-MIB::ifDescr.1", "IF-MIB::ifDescr.2",
	}, names(got))
	eng.AssertExpectations(t)
}

func TestExecuteBulkWalkDropsRootInstance(t *testing.T) {
	eng := &mockEngine{}
	sess := testSession(t)
	eng.On("BulkWalk", mock.Anything, sess, "1.3.6.1.2.1.1.5.0").
		Return([]wire.Binding{{Name: "1.3.6.1.2.1.1.5.0", Value: "router1"}}, nil).Once()

	exec := query.NewExecutor(eng, nil)
	got, err := exec.Execute(context.Background(), wire.KindBulkWalk,
		descriptors(t, ident.Symbol{Namespace: "SNMPv2-MIB", Field: "sysName.0"}), sess)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExecuteWrapsAgentStatus(t *testing.T) {
	eng := &mockEngine{}
	sess := testSession(t)
	eng.On("Get", mock.Anything, sess, mock.Anything).
		Return(nil, &query.StatusError{Status: wire.ErrorStatus(5), Index: 1}).Once()

	logger := &recordingLogger{}
	obs := &recordingObserver{}
	exec := query.NewExecutor(eng, nil, query.WithLogger(logger), query.WithObserver(obs))
	got, err := exec.Execute(context.Background(), wire.KindGet,
		descriptors(t, ident.RawPath("1.3.6.1.2.1.1.5.0")), sess)

	assert.Nil(t, got)
	require.ErrorIs(t, err, query.ErrQueryFailed)

	var qe *query.Error
	require.True(t, errors.As(err, &qe))
	require.NotNil(t, qe.Status)
	assert.Equal(t, wire.ErrorStatus(5), *qe.Status)
	assert.Equal(t, wire.KindGet, qe.Kind)
	assert.Equal(t, "192.0.2.1:161", qe.Target)

	var se *query.StatusError
	assert.True(t, errors.As(err, &se))

	require.Len(t, logger.events, 2)
	assert.Equal(t, log.CategoryRequest, logger.events[0].Category)
	assert.Equal(t, log.CategoryError, logger.events[1].Category)
	assert.Equal(t, logger.events[0].RequestID, logger.events[1].RequestID)

	require.Len(t, obs.errs, 1)
	assert.Error(t, obs.errs[0])
}

func TestExecuteTransportErrorIsQueryFailed(t *testing.T) {
	eng := &mockEngine{}
	sess := testSession(t)
	eng.On("BulkWalk", mock.Anything, sess, mock.Anything).
		Return(nil, errors.New("request timeout (after 3 retries)")).Once()

	exec := query.NewExecutor(eng, nil)
	_, err := exec.Execute(context.Background(), wire.KindBulkWalk,
		descriptors(t, ident.Symbol{Namespace: "IF-MIB", Field: "ifIndex"}), sess)

	require.ErrorIs(t, err, query.ErrQueryFailed)
	assert.Contains(t, err.Error(), "request timeout")
}

func TestExecuteUnknownSymbol(t *testing.T) {
	eng := &mockEngine{}
	exec := query.NewExecutor(eng, nil)
	_, err := exec.Execute(context.Background(), wire.KindGet,
		descriptors(t, ident.Symbol{Namespace: "IF-MIB", Field: "ifBogus"}), testSession(t))

	require.ErrorIs(t, err, ident.ErrInvalidIdentifier)
	assert.False(t, query.IsQueryFailed(err))
	eng.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteNonNumericIndex(t *testing.T) {
	exec := query.NewExecutor(&mockEngine{}, nil)
	_, err := exec.Execute(context.Background(), wire.KindGet,
		descriptors(t, ident.Symbol{Namespace: "SNMPv2-MIB", Field: "sysName.zero"}), testSession(t))

	require.ErrorIs(t, err, ident.ErrInvalidIdentifier)
}

func TestExecuteKeepsUntranslatableNames(t *testing.T) {
	eng := &mockEngine{}
	sess := testSession(t)
	eng.On("Get", mock.Anything, sess, []string{"2.999.1"}).
		Return([]wire.Binding{{Name: ".2.999.1", Value: 7}}, nil).Once()

	logger := &recordingLogger{}
	exec := query.NewExecutor(eng, nil, query.WithLogger(logger))
	got, err := exec.Execute(context.Background(), wire.KindGet,
		descriptors(t, ident.RawPath("2.999.1")), sess)

	require.NoError(t, err)
	assert.Equal(t, ".2.999.1", got[0].Name)
	require.Len(t, logger.events, 2)
	require.NotNil(t, logger.events[1].Response)
	assert.Equal(t, 1, logger.events[1].Response.Untranslated)
}

func TestExecuteRejectsInvalidKindAndMissingCredentials(t *testing.T) {
	exec := query.NewExecutor(&mockEngine{}, nil)
	descs := descriptors(t, ident.RawPath("1.3.6.1.2.1.1.5.0"))

	_, err := exec.Execute(context.Background(), wire.Kind(0), descs, testSession(t))
	assert.ErrorIs(t, err, wire.ErrNotSupported)

	_, err = exec.Execute(context.Background(), wire.KindGet, descs, query.Session{Target: query.Target{Host: "h"}})
	assert.ErrorIs(t, err, wire.ErrNotSupported)
}

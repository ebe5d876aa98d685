package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"blocc-dashboard/internal/alerting"
	"blocc-dashboard/internal/blocc"
	"blocc-dashboard/internal/poller"
)

const interval = time.Second

type fakeBackend struct {
	mu       sync.Mutex
	statuses map[int][]blocc.ForkStatus
	forkErr  map[int]error
	readings map[int][]blocc.Reading
	filters  []blocc.TransactionFilter
	txs      []blocc.Transaction
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		statuses: map[int][]blocc.ForkStatus{},
		forkErr:  map[int]error{},
		readings: map[int][]blocc.Reading{},
	}
}

func (b *fakeBackend) ForkStatus(_ context.Context, q blocc.ForkQuery) (blocc.ForkStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.forkErr[q.ContainerNum]; err != nil {
		return "", err
	}
	seq := b.statuses[q.ContainerNum]
	if len(seq) == 0 {
		return blocc.StatusNormal, nil
	}
	status := seq[0]
	if len(seq) > 1 {
		b.statuses[q.ContainerNum] = seq[1:]
	}
	return status, nil
}

func (b *fakeBackend) ApprovedReadings(_ context.Context, q blocc.SeriesQuery) ([]blocc.Reading, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readings[q.ContainerNum], nil
}

func (b *fakeBackend) Transactions(_ context.Context, f blocc.TransactionFilter) ([]blocc.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filters = append(b.filters, f)
	return b.txs, nil
}

func (b *fakeBackend) filterCalls() []blocc.TransactionFilter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]blocc.TransactionFilter(nil), b.filters...)
}

func (b *fakeBackend) setForkErr(n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forkErr[n] = err
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []alerting.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, note alerting.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notes)
}

func startService(t *testing.T, s *Service) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Error("dashboard did not stop")
		}
	})
}

func newService(backend Backend, notifier alerting.Notifier, mock *clock.Mock) *Service {
	return New(Options{
		Interval:        interval,
		Containers:      []int{1, 2},
		SeriesContainer: 2,
		SeriesWindow:    time.Minute,
		Clock:           mock,
	}, backend, notifier, zerolog.Nop())
}

func statusOf(s *Service, n int) blocc.ForkStatus {
	for _, v := range s.ForkStatuses() {
		if v.ContainerNum == n {
			return v.Status
		}
	}
	return ""
}

func TestServiceForkStatusesStartLoading(t *testing.T) {
	s := newService(newFakeBackend(), nil, clock.NewMock())

	views := s.ForkStatuses()
	require.Len(t, views, 2)
	for _, v := range views {
		require.Equal(t, blocc.StatusLoading, v.Status)
		require.Equal(t, "Loading", v.Appearance.Tooltip)
	}
	require.Equal(t, []int{1, 2}, s.Containers())
	require.Equal(t, 2, s.SeriesContainer())
}

func TestServiceAlertsOnEnteringForked(t *testing.T) {
	backend := newFakeBackend()
	backend.statuses[1] = []blocc.ForkStatus{blocc.StatusNormal, blocc.StatusForked, blocc.StatusForked}
	notifier := &recordingNotifier{}
	mock := clock.NewMock()
	s := newService(backend, notifier, mock)
	startService(t, s)

	require.Eventually(t, func() bool { return statusOf(s, 1) == blocc.StatusNormal }, 2*time.Second, time.Millisecond)
	require.Equal(t, 0, notifier.count())

	mock.Add(interval)
	require.Eventually(t, func() bool { return notifier.count() == 1 }, 2*time.Second, time.Millisecond)
	require.Equal(t, blocc.StatusForked, statusOf(s, 1))

	mock.Add(interval)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 1, notifier.count())

	notifier.mu.Lock()
	note := notifier.notes[0]
	notifier.mu.Unlock()
	require.Equal(t, 1, note.ContainerNum)
	require.Equal(t, blocc.StatusNormal, note.Previous)
	require.Equal(t, blocc.StatusForked, note.Current)
}

func TestServiceFailureShowsNotAvailable(t *testing.T) {
	backend := newFakeBackend()
	backend.setForkErr(2, &blocc.HTTPError{StatusCode: 503, Message: "peer unreachable"})
	s := newService(backend, nil, clock.NewMock())
	startService(t, s)

	require.Eventually(t, func() bool { return statusOf(s, 2) == blocc.StatusNotAvailable }, 2*time.Second, time.Millisecond)
	for _, v := range s.ForkStatuses() {
		if v.ContainerNum == 2 {
			require.Equal(t, "peer unreachable", v.Error)
			require.Equal(t, "warning", v.Appearance.Color)
		}
	}
}

func TestServiceFilterChangeRestartsImmediately(t *testing.T) {
	backend := newFakeBackend()
	backend.txs = []blocc.Transaction{{TxID: "tx-1", Approvals: make([]blocc.ApprovalTransaction, 5)}}
	s := newService(backend, nil, clock.NewMock())
	startService(t, s)

	require.Eventually(t, func() bool { return s.Transactions().State == poller.StateSuccess }, 2*time.Second, time.Millisecond)

	filter := blocc.TransactionFilter{ContainerNum: blocc.Some(2), ApprovalWindow: blocc.Some(60)}
	s.SetTransactionFilter(filter)
	require.Equal(t, filter, s.TransactionFilter())

	require.Eventually(t, func() bool {
		calls := backend.filterCalls()
		return len(calls) == 2 && calls[1] == filter
	}, 2*time.Second, time.Millisecond)

	require.Eventually(t, func() bool { return s.Transactions().State == poller.StateSuccess }, 2*time.Second, time.Millisecond)
	tx, ok := s.Transaction("tx-1")
	require.True(t, ok)
	require.Equal(t, blocc.ApprovalYellow, blocc.ClassifyApprovals(tx.ApprovalCount()))

	_, ok = s.Transaction("missing")
	require.False(t, ok)
}

func TestServiceSelectSeriesContainer(t *testing.T) {
	backend := newFakeBackend()
	backend.readings[3] = []blocc.Reading{{TxID: "r-1", Timestamp: 100}}
	s := newService(backend, nil, clock.NewMock())
	startService(t, s)

	s.SelectSeriesContainer(3)
	require.Equal(t, 3, s.SeriesContainer())
	require.Eventually(t, func() bool {
		res := s.Readings()
		return res.State == poller.StateSuccess && len(res.Data) == 1
	}, 2*time.Second, time.Millisecond)
}

func TestDisplayStatus(t *testing.T) {
	require.Equal(t, blocc.StatusLoading, DisplayStatus(poller.Result[blocc.ForkStatus]{}))
	require.Equal(t, blocc.StatusForked, DisplayStatus(poller.Result[blocc.ForkStatus]{State: poller.StateSuccess, Data: blocc.StatusForked}))
	require.Equal(t, blocc.StatusNotAvailable, DisplayStatus(poller.Result[blocc.ForkStatus]{
		State: poller.StateFailure, Data: blocc.StatusNormal, HasData: true, Message: errors.New("x").Error(),
	}))
}

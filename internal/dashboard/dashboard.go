package dashboard

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"blocc-dashboard/internal/alerting"
	"blocc-dashboard/internal/blocc"
	"blocc-dashboard/internal/poller"
)

// Backend is the subset of the BLOCC API the dashboard polls.
type Backend interface {
	ForkStatus(ctx context.Context, q blocc.ForkQuery) (blocc.ForkStatus, error)
	ApprovedReadings(ctx context.Context, q blocc.SeriesQuery) ([]blocc.Reading, error)
	Transactions(ctx context.Context, f blocc.TransactionFilter) ([]blocc.Transaction, error)
}

type (
	ForkPoller        = poller.Poller[blocc.ForkQuery, blocc.ForkStatus]
	SeriesPoller      = poller.Poller[blocc.SeriesQuery, []blocc.Reading]
	TransactionPoller = poller.Poller[blocc.TransactionFilter, []blocc.Transaction]
)

// Options configure the dashboard pollers.
type Options struct {
	Interval        time.Duration
	Containers      []int
	SeriesContainer int
	SeriesWindow    time.Duration
	Clock           clock.Clock
	// Metrics builds a collector per poller name; nil disables metrics.
	Metrics func(name string) poller.Metrics
	// DashboardURL is attached to fork alerts.
	DashboardURL string
}

const alertBuffer = 16

// Service owns one fork poller per container, the readings poller and the
// transactions poller. The pollers share nothing but the backend.
type Service struct {
	containers   []int
	forks        map[int]*ForkPoller
	series       *SeriesPoller
	seriesWindow time.Duration
	transactions *TransactionPoller
	notifier     alerting.Notifier
	dashboardURL string
	alerts       chan alerting.Notification
	logger       zerolog.Logger
}

// New wires the pollers. The readings poller starts on SeriesContainer and
// the transactions poller starts unfiltered.
func New(opts Options, backend Backend, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	s := &Service{
		containers:   append([]int(nil), opts.Containers...),
		forks:        make(map[int]*ForkPoller, len(opts.Containers)),
		seriesWindow: opts.SeriesWindow,
		notifier:     notifier,
		dashboardURL: opts.DashboardURL,
		alerts:       make(chan alerting.Notification, alertBuffer),
		logger:       logger.With().Str("component", "dashboard").Logger(),
	}

	metricsFor := func(name string) poller.Metrics {
		if opts.Metrics == nil {
			return nil
		}
		return opts.Metrics(name)
	}

	for _, n := range s.containers {
		containerNum := n
		name := forkPollerName(containerNum)
		p := poller.New[blocc.ForkQuery, blocc.ForkStatus](name, backend.ForkStatus, poller.Options[blocc.ForkStatus]{
			Interval: opts.Interval,
			Clock:    clk,
			Metrics:  metricsFor(name),
			OnChange: func(prev, next poller.Result[blocc.ForkStatus]) {
				s.onForkChange(containerNum, prev, next)
			},
		}, logger)
		p.SetQuery(blocc.ForkQuery{ContainerNum: containerNum})
		s.forks[containerNum] = p
	}

	s.series = poller.New[blocc.SeriesQuery, []blocc.Reading]("readings", backend.ApprovedReadings, poller.Options[[]blocc.Reading]{
		Interval: opts.Interval,
		Clock:    clk,
		Metrics:  metricsFor("readings"),
	}, logger)
	if opts.SeriesContainer > 0 {
		s.SelectSeriesContainer(opts.SeriesContainer)
	}

	s.transactions = poller.New[blocc.TransactionFilter, []blocc.Transaction]("transactions", backend.Transactions, poller.Options[[]blocc.Transaction]{
		Interval: opts.Interval,
		Clock:    clk,
		Metrics:  metricsFor("transactions"),
	}, logger)
	s.transactions.SetQuery(blocc.TransactionFilter{})

	return s
}

// Run polls until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, n := range s.containers {
		p := s.forks[n]
		g.Go(func() error { return p.Run(ctx) })
	}
	g.Go(func() error { return s.series.Run(ctx) })
	g.Go(func() error { return s.transactions.Run(ctx) })
	g.Go(func() error { return s.dispatchAlerts(ctx) })

	s.logger.Info().
		Ints("containers", s.containers).
		Msg("dashboard pollers started")
	return g.Wait()
}

// Containers lists the monitored containers in configuration order.
func (s *Service) Containers() []int {
	return append([]int(nil), s.containers...)
}

// ForkView is the fork badge of one container.
type ForkView struct {
	ContainerNum int                             `json:"containerNum"`
	Status       blocc.ForkStatus                `json:"status"`
	Appearance   blocc.Appearance                `json:"appearance"`
	Error        string                          `json:"error,omitempty"`
	UpdatedAt    time.Time                       `json:"updatedAt"`
	Result       poller.Result[blocc.ForkStatus] `json:"-"`
}

// ForkStatuses returns a badge per container.
func (s *Service) ForkStatuses() []ForkView {
	views := make([]ForkView, 0, len(s.containers))
	for _, n := range s.containers {
		res := s.forks[n].Snapshot()
		status := DisplayStatus(res)
		views = append(views, ForkView{
			ContainerNum: n,
			Status:       status,
			Appearance:   blocc.AppearanceOf(status),
			Error:        res.Message,
			UpdatedAt:    res.UpdatedAt,
			Result:       res,
		})
	}
	return views
}

// DisplayStatus maps a fork poll result onto a badge status. A failed poll
// means the fork state is unknown, whatever was seen before.
func DisplayStatus(res poller.Result[blocc.ForkStatus]) blocc.ForkStatus {
	switch res.State {
	case poller.StateSuccess:
		return res.Data
	case poller.StateFailure:
		return blocc.StatusNotAvailable
	default:
		return blocc.StatusLoading
	}
}

// SelectSeriesContainer points the readings chart at another container.
func (s *Service) SelectSeriesContainer(containerNum int) {
	s.series.SetQuery(blocc.SeriesQuery{ContainerNum: containerNum, Window: s.seriesWindow})
}

// SeriesContainer returns the container the readings chart follows.
func (s *Service) SeriesContainer() int {
	q, _ := s.series.Query()
	return q.ContainerNum
}

// Readings returns the readings chart state.
func (s *Service) Readings() poller.Result[[]blocc.Reading] {
	return s.series.Snapshot()
}

// SetTransactionFilter replaces the table filters; a different filter
// restarts polling immediately.
func (s *Service) SetTransactionFilter(f blocc.TransactionFilter) {
	s.transactions.SetQuery(f)
}

// TransactionFilter returns the active table filters.
func (s *Service) TransactionFilter() blocc.TransactionFilter {
	f, _ := s.transactions.Query()
	return f
}

// Transactions returns the transaction table state.
func (s *Service) Transactions() poller.Result[[]blocc.Transaction] {
	return s.transactions.Snapshot()
}

// Transaction looks up a row of the current table by id.
func (s *Service) Transaction(txID string) (blocc.Transaction, bool) {
	res := s.transactions.Snapshot()
	for _, tx := range res.Data {
		if tx.TxID == txID {
			return tx, true
		}
	}
	return blocc.Transaction{}, false
}

package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"blocc-dashboard/internal/blocc"
	"blocc-dashboard/internal/dashboard"
	"blocc-dashboard/internal/poller"
	"blocc-dashboard/internal/report"
)

// Source is the dashboard state the web surface renders.
type Source interface {
	Containers() []int
	ForkStatuses() []dashboard.ForkView
	SeriesContainer() int
	SelectSeriesContainer(containerNum int)
	Readings() poller.Result[[]blocc.Reading]
	TransactionFilter() blocc.TransactionFilter
	SetTransactionFilter(f blocc.TransactionFilter)
	Transactions() poller.Result[[]blocc.Transaction]
	Transaction(txID string) (blocc.Transaction, bool)
}

// Options configure the web surface.
type Options struct {
	// Refresh is the page reload period; zero disables reloading.
	Refresh  time.Duration
	PageSize int
	Location *time.Location
	// Metrics serves /metrics; nil uses the default prometheus registry.
	Metrics http.Handler
}

const defaultPageSize = 25

// Server renders the dashboard pages and JSON snapshots.
type Server struct {
	src       Source
	opts      Options
	dashboard *template.Template
	detail    *template.Template
	logger    zerolog.Logger
}

// NewServer parses the page templates.
func NewServer(src Source, opts Options, logger zerolog.Logger) *Server {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}

	funcs := template.FuncMap{
		"fmtTime": func(t time.Time) string {
			if t.IsZero() {
				return "—"
			}
			return t.In(opts.Location).Format("Jan 2 15:04:05")
		},
		"glyph": glyph,
		"itoa":  strconv.Itoa,
	}
	parse := func(content string) *template.Template {
		return template.Must(template.New("page").Funcs(funcs).Parse(tmplBase + content))
	}

	return &Server{
		src:       src,
		opts:      opts,
		dashboard: parse(tmplDashboard),
		detail:    parse(tmplTransaction),
		logger:    logger.With().Str("component", "web").Logger(),
	}
}

// Handler returns the routed, CORS-enabled handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /transactions/{txID}", s.handleTransaction)
	mux.HandleFunc("GET /chart/readings.png", s.handleReadingsChart)
	mux.HandleFunc("GET /api/forks", s.handleAPIForks)
	mux.HandleFunc("GET /api/readings", s.handleAPIReadings)
	mux.HandleFunc("GET /api/transactions", s.handleAPITransactions)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", s.opts.Metrics)

	return cors.Default().Handler(s.logRequests(mux))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(started)).
			Msg("request served")
	})
}

func (s *Server) render(w http.ResponseWriter, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		s.logger.Error().Err(err).Msg("template error")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

type readingsView struct {
	Loading bool
	Error   string
	Chart   bool
	Count   int
	Version int64
}

type txRow struct {
	TxID        string
	Creator     string
	CreatedAt   string
	Temperature string
	Approvals   int
	Color       blocc.ApprovalColor
}

type tableView struct {
	Loading bool
	Error   string
	Rows    []txRow
	Total   int
	Page    int
	Pages   int
	PrevURL string
	NextURL string
}

type dashboardPage struct {
	Refresh         int
	Forks           []dashboard.ForkView
	Containers      []int
	SeriesContainer int
	Readings        readingsView
	Form            filterForm
	FormError       string
	Table           tableView
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := dashboardPage{
		Refresh:    refreshSeconds(s.opts.Refresh),
		Containers: s.src.Containers(),
	}

	if raw := query.Get("series"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err == nil && containsInt(page.Containers, n) {
			s.src.SelectSeriesContainer(n)
		} else {
			page.FormError = "unknown container " + strconv.Quote(raw)
		}
	}

	if query.Get("filter") == "1" {
		f, err := ParseFilter(query, s.opts.Location)
		if err != nil {
			page.FormError = err.Error()
		} else {
			s.src.SetTransactionFilter(f)
		}
	}

	page.Forks = s.src.ForkStatuses()
	page.SeriesContainer = s.src.SeriesContainer()
	page.Readings = s.readingsView()
	page.Form = formValues(s.src.TransactionFilter(), s.opts.Location)
	page.Table = s.tableView(r.URL, pageNumber(query.Get("page")))

	s.render(w, s.dashboard, page)
}

func (s *Server) readingsView() readingsView {
	res := s.src.Readings()
	view := readingsView{
		Loading: res.Loading(),
		Count:   len(res.Data),
		Chart:   len(res.Data) >= 2,
		Version: res.UpdatedAt.UnixNano(),
	}
	if res.Failed() {
		view.Error = res.Message
	}
	return view
}

func (s *Server) tableView(u *url.URL, page int) tableView {
	res := s.src.Transactions()
	view := tableView{Loading: res.Loading(), Total: len(res.Data)}
	if res.Failed() {
		view.Error = res.Message
	}

	view.Pages = int(math.Max(1, math.Ceil(float64(view.Total)/float64(s.opts.PageSize))))
	if page > view.Pages {
		page = view.Pages
	}
	view.Page = page

	start := (page - 1) * s.opts.PageSize
	end := min(start+s.opts.PageSize, view.Total)
	for _, tx := range res.Data[start:end] {
		view.Rows = append(view.Rows, txRow{
			TxID:        tx.TxID,
			Creator:     tx.Creator,
			CreatedAt:   tx.CreatedAt(s.opts.Location).Format(report.TimeLayout),
			Temperature: tx.Temperature().String(),
			Approvals:   tx.ApprovalCount(),
			Color:       blocc.ClassifyApprovals(tx.ApprovalCount()),
		})
	}

	if page > 1 {
		view.PrevURL = pageURL(u, page-1)
	}
	if page < view.Pages {
		view.NextURL = pageURL(u, page+1)
	}
	return view
}

type approvalRow struct {
	TxID      string
	Creator   string
	CreatedAt string
	Delay     int64
}

type transactionPage struct {
	Refresh   int
	Tx        blocc.Transaction
	CreatedAt string
	ReadingAt string
	Approvals []approvalRow
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := s.src.Transaction(r.PathValue("txID"))
	if !ok {
		http.Error(w, "transaction not found in the current table", http.StatusNotFound)
		return
	}

	page := transactionPage{
		Tx:        tx,
		CreatedAt: tx.CreatedAt(s.opts.Location).Format(report.TimeLayout),
		ReadingAt: time.Unix(tx.Reading.Timestamp, 0).In(s.opts.Location).Format(report.TimeLayout),
	}
	for _, a := range tx.Approvals {
		page.Approvals = append(page.Approvals, approvalRow{
			TxID:      a.TxID,
			Creator:   a.Creator,
			CreatedAt: time.Unix(a.CreatedTimestamp, 0).In(s.opts.Location).Format(report.TimeLayout),
			Delay:     a.Delay(tx),
		})
	}

	s.render(w, s.detail, page)
}

func (s *Server) handleReadingsChart(w http.ResponseWriter, _ *http.Request) {
	res := s.src.Readings()

	var buf bytes.Buffer
	err := report.WriteReadingsPNG(&buf, res.Data, s.src.SeriesContainer(), s.opts.Location)
	if errors.Is(err, report.ErrNotEnoughPoints) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to render readings chart")
		http.Error(w, "chart rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

type snapshot[T any] struct {
	State     string    `json:"state"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
	Data      T         `json:"data"`
}

func snapshotOf[T any](res poller.Result[T]) snapshot[T] {
	return snapshot[T]{
		State:     res.State.String(),
		Message:   res.Message,
		UpdatedAt: res.UpdatedAt,
		Data:      res.Data,
	}
}

func (s *Server) handleAPIForks(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.src.ForkStatuses())
}

func (s *Server) handleAPIReadings(w http.ResponseWriter, _ *http.Request) {
	res := s.src.Readings()
	if res.Data == nil {
		res.Data = []blocc.Reading{}
	}
	s.writeJSON(w, struct {
		ContainerNum int `json:"containerNum"`
		snapshot[[]blocc.Reading]
	}{s.src.SeriesContainer(), snapshotOf(res)})
}

func (s *Server) handleAPITransactions(w http.ResponseWriter, _ *http.Request) {
	res := s.src.Transactions()
	if res.Data == nil {
		res.Data = []blocc.Transaction{}
	}
	s.writeJSON(w, struct {
		Filter map[string]string `json:"filter"`
		snapshot[[]blocc.Transaction]
	}{filterParams(s.src.TransactionFilter()), snapshotOf(res)})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func filterParams(f blocc.TransactionFilter) map[string]string {
	params := map[string]string{}
	for k, v := range f.Params() {
		params[k] = v[0]
	}
	return params
}

func refreshSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

func pageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func pageURL(u *url.URL, page int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	return "/?" + q.Encode()
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}

// glyph maps a badge icon name onto a character.
func glyph(icon string) string {
	switch icon {
	case "error_outline":
		return "✖"
	case "check_circle_outline":
		return "✔"
	case "help_outline":
		return "?"
	default:
		return "…"
	}
}

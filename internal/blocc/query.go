package blocc

import (
	"net/url"
	"strconv"
	"time"
)

// Opt is an optional comparable value. The zero Opt is unset.
type Opt[T comparable] struct {
	value T
	ok    bool
}

// Some returns a set Opt holding v.
func Some[T comparable](v T) Opt[T] {
	return Opt[T]{value: v, ok: true}
}

// Get returns the value and whether it is set.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSet reports whether o holds a value.
func (o Opt[T]) IsSet() bool {
	return o.ok
}

// ForkQuery identifies a fork status poll.
type ForkQuery struct {
	ContainerNum int
}

// Params builds the /forkStatus query string.
func (q ForkQuery) Params() url.Values {
	return url.Values{"containerNum": []string{strconv.Itoa(q.ContainerNum)}}
}

// SeriesQuery identifies a readings poll: the last Window of approved
// readings for a container. The anchor moves with every fetch.
type SeriesQuery struct {
	ContainerNum int
	Window       time.Duration
}

// Params builds the /transaction/approvedTempReadings query string relative to now.
func (q SeriesQuery) Params(now time.Time) url.Values {
	since := now.Add(-q.Window).Unix()
	return url.Values{
		"containerNum":   []string{strconv.Itoa(q.ContainerNum)},
		"sinceTimestamp": []string{strconv.FormatInt(since, 10)},
	}
}

// TransactionFilter holds the transaction table filters. Dates are kept as
// epoch milliseconds so two filters compare equal exactly when they would
// produce the same request.
type TransactionFilter struct {
	ContainerNum   Opt[int]
	StartMillis    Opt[int64]
	EndMillis      Opt[int64]
	ApprovalWindow Opt[int]
}

// WithStart returns f with the lower time bound set to t.
func (f TransactionFilter) WithStart(t time.Time) TransactionFilter {
	f.StartMillis = Some(t.UnixMilli())
	return f
}

// WithEnd returns f with the upper time bound set to t.
func (f TransactionFilter) WithEnd(t time.Time) TransactionFilter {
	f.EndMillis = Some(t.UnixMilli())
	return f
}

// Params builds the /transaction/sensorChaincodeTransactions query string.
// Unset filters are omitted rather than sent empty.
func (f TransactionFilter) Params() url.Values {
	params := url.Values{}
	if v, ok := f.ContainerNum.Get(); ok {
		params.Set("containerNum", strconv.Itoa(v))
	}
	if v, ok := f.StartMillis.Get(); ok {
		params.Set("sinceTimestamp", strconv.FormatInt(floorDiv(v, 1000), 10))
	}
	if v, ok := f.EndMillis.Get(); ok {
		params.Set("untilTimestamp", strconv.FormatInt(floorDiv(v, 1000), 10))
	}
	if v, ok := f.ApprovalWindow.Get(); ok {
		params.Set("approvalWindow", strconv.Itoa(v))
	}
	return params
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

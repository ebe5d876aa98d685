package web

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"blocc-dashboard/internal/blocc"
)

// Layouts accepted from datetime-local inputs, with and without seconds.
var formLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04"}

const formLayout = "2006-01-02T15:04:05"

// ParseFilter reads the table filter form. Empty fields stay unset.
func ParseFilter(values url.Values, loc *time.Location) (blocc.TransactionFilter, error) {
	var f blocc.TransactionFilter
	if loc == nil {
		loc = time.UTC
	}

	if raw := strings.TrimSpace(values.Get("containerNum")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return f, fmt.Errorf("containerNum must be a positive integer, got %q", raw)
		}
		f.ContainerNum = blocc.Some(n)
	}

	if raw := strings.TrimSpace(values.Get("start")); raw != "" {
		t, err := parseFormTime(raw, loc)
		if err != nil {
			return f, fmt.Errorf("start: %w", err)
		}
		f = f.WithStart(t)
	}

	if raw := strings.TrimSpace(values.Get("end")); raw != "" {
		t, err := parseFormTime(raw, loc)
		if err != nil {
			return f, fmt.Errorf("end: %w", err)
		}
		f = f.WithEnd(t)
	}

	if start, ok := f.StartMillis.Get(); ok {
		if end, ok := f.EndMillis.Get(); ok && start > end {
			return f, fmt.Errorf("start must not be after end")
		}
	}

	if raw := strings.TrimSpace(values.Get("approvalWindow")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, fmt.Errorf("approvalWindow must be a non-negative integer, got %q", raw)
		}
		f.ApprovalWindow = blocc.Some(n)
	}

	return f, nil
}

func parseFormTime(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range formLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q", raw)
}

// filterForm holds the form field values that reproduce f.
type filterForm struct {
	ContainerNum   string
	Start          string
	End            string
	ApprovalWindow string
}

func formValues(f blocc.TransactionFilter, loc *time.Location) filterForm {
	var form filterForm
	if n, ok := f.ContainerNum.Get(); ok {
		form.ContainerNum = strconv.Itoa(n)
	}
	if ms, ok := f.StartMillis.Get(); ok {
		form.Start = time.UnixMilli(ms).In(loc).Format(formLayout)
	}
	if ms, ok := f.EndMillis.Get(); ok {
		form.End = time.UnixMilli(ms).In(loc).Format(formLayout)
	}
	if n, ok := f.ApprovalWindow.Get(); ok {
		form.ApprovalWindow = strconv.Itoa(n)
	}
	return form
}

package blocc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ForkStatus is the fork state of a container's ledger as seen by the dashboard.
type ForkStatus string

const (
	StatusForked       ForkStatus = "FORKED"
	StatusNormal       ForkStatus = "NORMAL"
	StatusNotAvailable ForkStatus = "NOT_AVAILABLE"
	// StatusLoading never comes from the backend; it covers the time before the first response.
	StatusLoading ForkStatus = "LOADING"
)

// AllStatuses lists every observable status, server values first.
var AllStatuses = []ForkStatus{StatusForked, StatusNormal, StatusNotAvailable, StatusLoading}

// ParseForkStatus maps a server status name onto the enum. The lowercase names
// emitted by older backends (forked/normal/disconnected) are accepted too.
func ParseForkStatus(raw string) (ForkStatus, error) {
	switch strings.TrimSpace(raw) {
	case "FORKED", "forked":
		return StatusForked, nil
	case "NORMAL", "normal":
		return StatusNormal, nil
	case "NOT_AVAILABLE", "disconnected":
		return StatusNotAvailable, nil
	}
	return "", fmt.Errorf("unknown fork status %q", raw)
}

type forkStatusResponse struct {
	Status string `json:"status"`
}

// DecodeForkStatus decodes a /forkStatus body. Both the current
// {"status": "..."} object and the legacy bare boolean are understood.
func DecodeForkStatus(body []byte) (ForkStatus, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", &DecodeError{Err: fmt.Errorf("empty fork status body")}
	}

	var legacy bool
	if err := json.Unmarshal(trimmed, &legacy); err == nil {
		if legacy {
			return StatusForked, nil
		}
		return StatusNormal, nil
	}

	var res forkStatusResponse
	if err := json.Unmarshal(trimmed, &res); err != nil {
		return "", &DecodeError{Err: err}
	}
	status, err := ParseForkStatus(res.Status)
	if err != nil {
		return "", &DecodeError{Err: err}
	}
	return status, nil
}

// Appearance is how a status badge is drawn.
type Appearance struct {
	Color   string `json:"color"`
	Icon    string `json:"icon"`
	Tooltip string `json:"tooltip"`
}

var appearances = map[ForkStatus]Appearance{
	StatusForked:       {Color: "error", Icon: "error_outline", Tooltip: "Forked"},
	StatusNormal:       {Color: "success", Icon: "check_circle_outline", Tooltip: "Normal"},
	StatusNotAvailable: {Color: "warning", Icon: "help_outline", Tooltip: "Not Available"},
	StatusLoading:      {Color: "secondary", Icon: "progress", Tooltip: "Loading"},
}

func init() {
	for _, s := range AllStatuses {
		if _, ok := appearances[s]; !ok {
			panic("missing appearance for fork status " + string(s))
		}
	}
}

// AppearanceOf returns the badge for s. Statuses outside the enum panic.
func AppearanceOf(s ForkStatus) Appearance {
	a, ok := appearances[s]
	if !ok {
		panic(fmt.Sprintf("no appearance configured for fork status %q", s))
	}
	return a
}

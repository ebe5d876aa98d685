package web

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"blocc-dashboard/internal/blocc"
)

func TestParseFilterEmptyFieldsStayUnset(t *testing.T) {
	f, err := ParseFilter(url.Values{
		"containerNum":   {""},
		"start":          {""},
		"end":            {" "},
		"approvalWindow": {""},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, blocc.TransactionFilter{}, f)
	require.Empty(t, f.Params())
}

func TestParseFilterAllFields(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	f, err := ParseFilter(url.Values{
		"containerNum":   {"3"},
		"start":          {"2023-11-15T06:13:20"},
		"end":            {"2023-11-15T07:00:30"},
		"approvalWindow": {"0"},
	}, loc)
	require.NoError(t, err)

	require.Equal(t, blocc.Some(3), f.ContainerNum)

	start := time.Date(2023, 11, 15, 6, 13, 20, 0, loc)
	end := time.Date(2023, 11, 15, 7, 0, 30, 0, loc)
	require.Equal(t, blocc.Some(start.UnixMilli()), f.StartMillis)
	require.Equal(t, blocc.Some(end.UnixMilli()), f.EndMillis)
	require.Equal(t, blocc.Some(0), f.ApprovalWindow)
	require.Equal(t, "1700000000", f.Params().Get("sinceTimestamp"))
	require.Equal(t, "1700002830", f.Params().Get("untilTimestamp"))
}

func TestParseFilterRejectsBadInput(t *testing.T) {
	cases := map[string]url.Values{
		"container not a number": {"containerNum": {"abc"}},
		"container zero":         {"containerNum": {"0"}},
		"bad start":              {"start": {"yesterday"}},
		"bad end":                {"end": {"2023-13-01T00:00"}},
		"negative window":        {"approvalWindow": {"-5"}},
		"start after end":        {"start": {"2023-11-15T08:00"}, "end": {"2023-11-15T07:00"}},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFilter(values, time.UTC)
			require.Error(t, err)
		})
	}
}

func TestFormValuesRoundTrip(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	values := url.Values{
		"containerNum":   {"5"},
		"start":          {"2024-01-02T03:04:05"},
		"approvalWindow": {"90"},
	}
	f, err := ParseFilter(values, loc)
	require.NoError(t, err)

	form := formValues(f, loc)
	require.Equal(t, filterForm{ContainerNum: "5", Start: "2024-01-02T03:04:05", ApprovalWindow: "90"}, form)
}

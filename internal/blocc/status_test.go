package blocc

import (
	"errors"
	"testing"
)

func TestDecodeForkStatus(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    ForkStatus
		wantErr bool
	}{
		{name: "forked object", body: `{"status":"FORKED"}`, want: StatusForked},
		{name: "normal object", body: `{"status":"NORMAL"}`, want: StatusNormal},
		{name: "not available object", body: `{"status":"NOT_AVAILABLE"}`, want: StatusNotAvailable},
		{name: "legacy lowercase", body: `{"status":"disconnected"}`, want: StatusNotAvailable},
		{name: "legacy true", body: `true`, want: StatusForked},
		{name: "legacy false", body: " false\n", want: StatusNormal},
		{name: "loading is client only", body: `{"status":"LOADING"}`, wantErr: true},
		{name: "unknown status", body: `{"status":"MAYBE"}`, wantErr: true},
		{name: "wrong shape", body: `[1,2]`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
		{name: "null", body: `null`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeForkStatus([]byte(tt.body))
			if tt.wantErr {
				var decErr *DecodeError
				if !errors.As(err, &decErr) {
					t.Fatalf("expected DecodeError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAppearanceOfIsTotal(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range AllStatuses {
		a := AppearanceOf(s)
		if a.Color == "" || a.Icon == "" || a.Tooltip == "" {
			t.Fatalf("incomplete appearance for %s: %+v", s, a)
		}
		seen[a.Color] = true
	}
	if len(seen) != len(AllStatuses) {
		t.Fatalf("expected distinct colours per status, got %v", seen)
	}
	if AppearanceOf(StatusForked).Color != "error" {
		t.Fatal("forked badge should use the error colour")
	}
}

func TestAppearanceOfUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown status")
		}
	}()
	AppearanceOf(ForkStatus("disconnected"))
}

package blocc

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestClassifyApprovals(t *testing.T) {
	tests := []struct {
		count int
		want  ApprovalColor
	}{
		{0, ApprovalRed},
		{3, ApprovalRed},
		{4, ApprovalYellow},
		{7, ApprovalYellow},
		{8, ApprovalGreen},
		{12, ApprovalGreen},
	}
	for _, tt := range tests {
		if got := ClassifyApprovals(tt.count); got != tt.want {
			t.Errorf("ClassifyApprovals(%d) = %s, want %s", tt.count, got, tt.want)
		}
	}
}

func TestTransactionDerivedColumns(t *testing.T) {
	payload := `{
		"txId": "tx-1",
		"creator": "Org1MSP",
		"createdTimestamp": 1700000000,
		"reading": {"temperature": 4.25, "relativeHumidity": 61.5, "timestamp": 1699999990},
		"approvals": [
			{"txId": "ap-1", "creator": "Org2MSP", "createdTimestamp": 1700000012},
			{"txId": "ap-2", "creator": "Org3MSP", "createdTimestamp": 1700000030}
		],
		"containerNum": 5
	}`

	var tx Transaction
	if err := json.Unmarshal([]byte(payload), &tx); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !tx.Temperature().Equal(decimal.RequireFromString("4.25")) {
		t.Fatalf("unexpected temperature %s", tx.Temperature())
	}
	if tx.ApprovalCount() != 2 {
		t.Fatalf("expected 2 approvals, got %d", tx.ApprovalCount())
	}
	if got := tx.CreatedAt(nil); !got.Equal(time.Unix(1700000000, 0)) || got.Location() != time.UTC {
		t.Fatalf("unexpected created at %v", got)
	}

	ap, ok := tx.FindApproval("ap-2")
	if !ok {
		t.Fatal("approval ap-2 not found")
	}
	if d := ap.Delay(tx); d != 30 {
		t.Fatalf("expected delay 30, got %d", d)
	}
	if _, ok := tx.FindApproval("missing"); ok {
		t.Fatal("unexpected approval match")
	}
}

package blocc

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reading is an approved temperature reading for the series chart.
type Reading struct {
	TxID        string          `json:"txId"`
	Temperature decimal.Decimal `json:"temperature"`
	Approvals   int             `json:"approvals"`
	Timestamp   int64           `json:"timestamp"`
}

// Time converts the epoch-second timestamp.
func (r Reading) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// TemperatureHumidityReading is the sensor payload carried by a transaction.
type TemperatureHumidityReading struct {
	Temperature      decimal.Decimal `json:"temperature"`
	RelativeHumidity decimal.Decimal `json:"relativeHumidity"`
	Timestamp        int64           `json:"timestamp"`
}

// ApprovalTransaction endorses a sensor reading on the ledger.
type ApprovalTransaction struct {
	TxID             string `json:"txId"`
	Creator          string `json:"creator"`
	CreatedTimestamp int64  `json:"createdTimestamp"`
}

// Transaction is a sensor chaincode transaction with its approvals.
type Transaction struct {
	TxID             string                     `json:"txId"`
	Creator          string                     `json:"creator"`
	CreatedTimestamp int64                      `json:"createdTimestamp"`
	Reading          TemperatureHumidityReading `json:"reading"`
	Approvals        []ApprovalTransaction      `json:"approvals"`
	ContainerNum     int                        `json:"containerNum"`
}

// Temperature is the table's temperature column.
func (t Transaction) Temperature() decimal.Decimal {
	return t.Reading.Temperature
}

// ApprovalCount is the table's approvals column.
func (t Transaction) ApprovalCount() int {
	return len(t.Approvals)
}

// CreatedAt is the creation time in loc, or UTC when loc is nil.
func (t Transaction) CreatedAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(t.CreatedTimestamp, 0).In(loc)
}

// FindApproval looks up an approval of t by transaction id.
func (t Transaction) FindApproval(txID string) (ApprovalTransaction, bool) {
	for _, a := range t.Approvals {
		if a.TxID == txID {
			return a, true
		}
	}
	return ApprovalTransaction{}, false
}

// Delay is the number of seconds between tx being created and a being added
// to the ledger.
func (a ApprovalTransaction) Delay(tx Transaction) int64 {
	return a.CreatedTimestamp - tx.CreatedTimestamp
}

// ApprovalColor classifies an approval count for the table cell.
type ApprovalColor string

const (
	ApprovalGreen  ApprovalColor = "green"
	ApprovalYellow ApprovalColor = "yellow"
	ApprovalRed    ApprovalColor = "red"
)

// ClassifyApprovals buckets count: >=8 green, [4,8) yellow, <4 red.
func ClassifyApprovals(count int) ApprovalColor {
	switch {
	case count >= 8:
		return ApprovalGreen
	case count >= 4:
		return ApprovalYellow
	default:
		return ApprovalRed
	}
}

package reporting

import "ivr-gateway/internal/calllog"

// Summary is the aggregated view of the call log with ignored numbers
// filtered out at the source.
type Summary struct {
	TotalCalls    int `json:"total_calls"`
	UniqueCallers int `json:"unique_callers"`

	// Codes is sorted by count descending, ties broken by code ascending.
	Codes []CodeCount `json:"codes"`

	// Rows is the raw listing, timestamp ascending.
	Rows []calllog.AggregateRow `json:"rows"`
}

// CodeCount aggregates one selected code. Calls that never reached digit
// collection carry no code and are counted only in the totals.
type CodeCount struct {
	Code          string `json:"code"`
	Count         int    `json:"count"`
	UniqueCallers int    `json:"unique_callers"`
}

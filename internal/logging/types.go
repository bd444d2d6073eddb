package logging

import "time"

// #region decision-entry
// DecisionEntry is a single row in the decision_log table.
type DecisionEntry struct {
	ID             int64
	RunID          string
	Tick           int
	AgentID        string
	VersionID      string // mass network version the tick produced, if any
	ActionID       string
	Kind           string
	Q              float64
	Fallback       bool
	FilterBypassed bool
	Forced         bool
	RankedJSON     string
	AtomIDs        string // comma separated action atom ids
	Notes          string
	CreatedAt      time.Time
}

// #endregion decision-entry

// #region ranked-record
// RankedRecord is one ranked candidate serialized into decision_log.ranked_json.
type RankedRecord struct {
	ID         string  `json:"id"`
	Q          float64 `json:"q"`
	RawQ       float64 `json:"raw_q"`
	Confidence float64 `json:"confidence"`
	Excluded   bool    `json:"excluded,omitempty"`
}

// #endregion ranked-record

package models

// AlgoAction classifies an algo log entry. The taxonomy is part of the
// backend contract; the console colors entries by action kind.
type AlgoAction string

const (
	AlgoActionStarted    AlgoAction = "STARTED"
	AlgoActionStopped    AlgoAction = "STOPPED"
	AlgoActionSignalBuy  AlgoAction = "SIGNAL_BUY"
	AlgoActionSignalSell AlgoAction = "SIGNAL_SELL"
	AlgoActionHold       AlgoAction = "HOLD"
	AlgoActionError      AlgoAction = "ERROR"
)

// AlgoLogEntry is one line of the strategy's activity log.
// SMA is the reference value the signal was computed against.
type AlgoLogEntry struct {
	Time   string     `json:"time"`
	Action AlgoAction `json:"action"`
	Price  float64    `json:"price"`
	SMA    float64    `json:"sma"`
}

// AlgoStatus is the full state of the background strategy. Logs are
// ordered newest-first as the backend appends at the head; the client
// replaces its local copy wholesale on every poll.
type AlgoStatus struct {
	Running bool           `json:"running"`
	Symbol  string         `json:"symbol"`
	Logs    []AlgoLogEntry `json:"logs"`
}

// RecentLogs returns the newest limit entries in chronological order,
// ready for top-to-bottom rendering. A non-positive limit keeps all
// entries. The receiver's newest-first slice is not modified.
func (s *AlgoStatus) RecentLogs(limit int) []AlgoLogEntry {
	logs := s.Logs
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	out := make([]AlgoLogEntry, len(logs))
	for i, entry := range logs {
		out[len(logs)-1-i] = entry
	}
	return out
}

// AlgoCommandResult is the backend's acknowledgment of a start/stop command.
// The acknowledgment is advisory; the authoritative state is the next
// status poll.
type AlgoCommandResult struct {
	Status string `json:"status"`
	Symbol string `json:"symbol,omitempty"`
}

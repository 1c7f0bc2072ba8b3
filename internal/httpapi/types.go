package httpapi

import "github.com/dshills/vigil/internal/proctor"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// BusStats mirrors event.Stats.
type BusStats struct {
	Emitted         uint64 `json:"emitted"`
	Delivered       uint64 `json:"delivered"`
	Faults          uint64 `json:"faults"`
	HistoryLen      int    `json:"historyLen"`
	HistoryCap      int    `json:"historyCap"`
	TopicListeners  int    `json:"topicListeners"`
	GlobalListeners int    `json:"globalListeners"`
}

// LogStats mirrors logging.Stats.
type LogStats struct {
	Logged      uint64 `json:"logged"`
	Delivered   uint64 `json:"delivered"`
	Faults      uint64 `json:"faults"`
	HistoryLen  int    `json:"historyLen"`
	Subscribers int    `json:"subscribers"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Bus     BusStats        `json:"bus"`
	Log     LogStats        `json:"log"`
	Session proctor.Session `json:"session"`
}

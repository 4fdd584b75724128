package chart

// State is a chart's lifecycle state
type State int

const (
	StateUninitialized State = iota
	StateRendered
	StateUpdated
	StateResized
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRendered:
		return "rendered"
	case StateUpdated:
		return "updated"
	case StateResized:
		return "resized"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// IsLive reports whether the chart has been rendered and not yet destroyed
func (s State) IsLive() bool {
	return s == StateRendered || s == StateUpdated || s == StateResized
}

// Lifecycle event names, emitted as "chart:<name>"
const (
	EventRendered  = "chart:rendered"
	EventUpdated   = "chart:updated"
	EventResized   = "chart:resized"
	EventDestroyed = "chart:destroyed"
)

// Event is the payload of every lifecycle event
type Event struct {
	ChartID string `json:"chart_id"`
	Type    string `json:"type"`
	State   State  `json:"state"`
	Records int    `json:"records"`
}

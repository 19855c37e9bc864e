package observerproto

import "stalkercraft.ai/internal/telemetry"

// Version is the observer protocol version.
const Version = "0.1"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeEvent     = "EVENT"
)

// Client -> Server. First message on the observer WS connection, and can be re-sent to change the filter.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	// Kinds filters the stream; empty means every kind.
	Kinds []telemetry.Kind `json:"kinds,omitempty"`
	// AgentID filters to one agent; zero means every agent.
	AgentID int `json:"agent_id,omitempty"`
}

// Server -> Client. One per telemetry event.
type EventMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	Event           telemetry.Event `json:"event"`
}

// Filter is a parsed subscription.
type Filter struct {
	kinds   map[telemetry.Kind]bool
	agentID int
}

func (m SubscribeMsg) Filter() Filter {
	f := Filter{agentID: m.AgentID}
	if len(m.Kinds) > 0 {
		f.kinds = make(map[telemetry.Kind]bool, len(m.Kinds))
		for _, k := range m.Kinds {
			f.kinds[k] = true
		}
	}
	return f
}

func (f Filter) Match(e telemetry.Event) bool {
	if f.agentID != 0 && e.Agent != f.agentID {
		return false
	}
	return f.kinds == nil || f.kinds[e.Kind]
}

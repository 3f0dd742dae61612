package kernel

// UsageKind identifies a resource tracked by the monitor.
type UsageKind string

const (
	// UsageTokens counts estimated tokens consumed.
	UsageTokens UsageKind = "tokens"
	// UsageToolCalls counts tool dispatch attempts.
	UsageToolCalls UsageKind = "tool_calls"
)

// UsageEntry is one record in the usage ledger.
type UsageEntry struct {
	// Kind is the resource recorded.
	Kind UsageKind
	// AgentID is the agent the usage is attributed to.
	AgentID string
	// TaskID is the task under work, empty if none.
	TaskID string
	// Amount is the recorded amount, always positive.
	Amount int64
}

// Report holds aggregate usage totals for one run.
type Report struct {
	// TotalTokens is the estimated token count across all agents.
	TotalTokens int64 `json:"total_tokens"`
	// TotalToolCalls is the number of tool dispatches across all agents.
	TotalToolCalls int64 `json:"total_tool_calls"`
}

// ResourceMonitor keeps an append-only ledger of resource usage plus running
// totals per kind. It is scoped to one run and holds nothing durable.
type ResourceMonitor struct {
	entries        []UsageEntry
	totalTokens    int64
	totalToolCalls int64
}

// NewResourceMonitor creates an empty monitor.
func NewResourceMonitor() *ResourceMonitor {
	return &ResourceMonitor{}
}

// Record appends a usage entry and updates totals.
// Non-positive amounts are ignored.
func (m *ResourceMonitor) Record(kind UsageKind, agentID, taskID string, amount int64) {
	if amount <= 0 {
		return
	}

	debugLog("[monitor] recording %d %s for agent %s (task %s)", amount, kind, agentID, taskID)
	switch kind {
	case UsageTokens:
		m.totalTokens += amount
	case UsageToolCalls:
		m.totalToolCalls += amount
	}
	m.entries = append(m.entries, UsageEntry{Kind: kind, AgentID: agentID, TaskID: taskID, Amount: amount})
}

// Report returns the aggregate totals.
func (m *ResourceMonitor) Report() Report {
	return Report{
		TotalTokens:    m.totalTokens,
		TotalToolCalls: m.totalToolCalls,
	}
}

// Entries returns a copy of the ledger.
func (m *ResourceMonitor) Entries() []UsageEntry {
	out := make([]UsageEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

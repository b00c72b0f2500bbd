package models

// NodeKind identifies the unit of work a node performs.
type NodeKind string

const (
	NodeKindTrigger     NodeKind = "trigger"
	NodeKindHTTPRequest NodeKind = "http_request"
	NodeKindTransform   NodeKind = "transform"
	NodeKindSendEmail   NodeKind = "send_email"
)

// TriggerKind distinguishes how a trigger node originates execution.
type TriggerKind string

const (
	TriggerKindManual           TriggerKind = "manual"
	TriggerKindScheduleCron     TriggerKind = "schedule_cron"
	TriggerKindScheduleInterval TriggerKind = "schedule_interval"
)

// Node is a workflow node definition: a name unique within the workflow, a
// kind, and a string-keyed parameter bag interpreted by the node
// implementation of that kind.
type Node struct {
	Name        string         `json:"name"                   validate:"required,min=1"`
	Kind        NodeKind       `json:"kind"                   validate:"required"`
	TriggerKind TriggerKind    `json:"trigger_kind,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

func (n *Node) IsTrigger() bool {
	return n.Kind == NodeKindTrigger
}

// IsSchedule reports whether the node is a time-driven trigger, i.e. one the
// scheduler owns. Manual triggers are fired by the engine only.
func (n *Node) IsSchedule() bool {
	return n.Kind == NodeKindTrigger &&
		(n.TriggerKind == TriggerKindScheduleCron || n.TriggerKind == TriggerKindScheduleInterval)
}

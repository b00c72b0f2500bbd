// Package scheduletrigger provides the time-driven trigger node. The
// scheduler owns its firing; the node itself only validates its schedule
// parameters and produces the trigger payload when fired.
package scheduletrigger

import (
	"context"
	"sync"
	"time"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/nodes"
	"github.com/robfig/cron/v3"
)

const (
	ScheduleTypeCron     = "cron"
	ScheduleTypeInterval = "interval"
)

// ScheduleTriggerNode fires on a cron expression or a fixed interval. Unlike
// every other node it keeps state across runs: the timestamp of its last
// fire, guarded by a mutex because concurrent scheduler firings share the
// node instance.
type ScheduleTriggerNode struct {
	name       string
	parameters map[string]any

	mu            sync.Mutex
	lastExecution time.Time
}

func NewScheduleTriggerNode(name string, parameters map[string]any) (*ScheduleTriggerNode, error) {
	node := &ScheduleTriggerNode{
		name:       name,
		parameters: parameters,
	}

	if err := node.Validate(); err != nil {
		return nil, err
	}

	return node, nil
}

func (n *ScheduleTriggerNode) Validate() error {
	scheduleType, _ := n.parameters["schedule_type"].(string)

	switch scheduleType {
	case ScheduleTypeCron:
		expr, _ := n.parameters["cron_expression"].(string)
		if expr == "" {
			return nodes.Errorf("cron_expression is required for cron schedule")
		}

		if _, err := cron.ParseStandard(expr); err != nil {
			return nodes.Errorf("invalid cron expression: %v", err)
		}
	case ScheduleTypeInterval:
		minutes, ok := intParameter(n.parameters["interval_minutes"])
		if !ok || minutes <= 0 {
			return nodes.Errorf("interval_minutes must be a positive integer")
		}
	default:
		return nodes.Errorf("schedule_type is required (interval or cron)")
	}

	if _, err := n.location(); err != nil {
		return nodes.Errorf("invalid timezone: %v", err)
	}

	return nil
}

func (n *ScheduleTriggerNode) Execute(_ context.Context, _ *models.ExecutionContext) (*nodes.Result, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	location, err := n.location()
	if err != nil {
		return nil, nodes.Errorf("invalid timezone: %v", err)
	}

	now := time.Now().In(location)

	n.mu.Lock()
	n.lastExecution = now
	n.mu.Unlock()

	return nodes.NewResult(map[string]any{
		"trigger_type":  "schedule",
		"schedule_type": n.parameters["schedule_type"],
		"timestamp":     now.Format(time.RFC3339),
		"timezone":      n.Timezone(),
	}), nil
}

// LastExecution returns the time of the most recent fire, zero before the
// first one.
func (n *ScheduleTriggerNode) LastExecution() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.lastExecution
}

// Timezone returns the configured IANA zone name, defaulting to UTC.
func (n *ScheduleTriggerNode) Timezone() string {
	if tz, ok := n.parameters["timezone"].(string); ok && tz != "" {
		return tz
	}

	return "UTC"
}

func (n *ScheduleTriggerNode) location() (*time.Location, error) {
	return time.LoadLocation(n.Timezone())
}

// intParameter coerces the numeric types a JSON parameter bag may carry.
func intParameter(value any) (int, bool) {
	switch typed := value.(type) {
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case float64:
		if typed != float64(int(typed)) {
			return 0, false
		}

		return int(typed), true
	default:
		return 0, false
	}
}

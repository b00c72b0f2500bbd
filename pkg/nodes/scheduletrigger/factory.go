package scheduletrigger

import "github.com/fluxo-hq/fluxo/pkg/protocol"

// Factory creates ScheduleTriggerNode instances; it serves both the cron and
// the interval trigger kinds.
type Factory struct{}

func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Create(name string, parameters map[string]any) (protocol.Node, error) {
	return NewScheduleTriggerNode(name, parameters)
}

func (f *Factory) Kind() string {
	return "trigger:schedule"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "Schedule Trigger Configuration",
		"description": "Fires on a cron expression or a fixed interval",
		"properties": map[string]any{
			"schedule_type": map[string]any{
				"type":        "string",
				"description": "How the trigger is driven",
				"enum":        []string{ScheduleTypeCron, ScheduleTypeInterval},
			},
			"cron_expression": map[string]any{
				"type":        "string",
				"description": "Standard 5-field cron expression (minute hour day month weekday)",
				"examples":    []string{"0 9 * * *", "*/15 * * * *"},
			},
			"interval_minutes": map[string]any{
				"type":        "integer",
				"description": "Fixed firing period in minutes",
				"minimum":     1,
			},
			"timezone": map[string]any{
				"type":        "string",
				"description": "IANA timezone name for cron evaluation and timestamps",
				"default":     "UTC",
			},
		},
		"required": []string{"schedule_type"},
	}
}

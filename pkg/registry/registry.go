// Package registry maps node kinds to their factories and builds validated
// node instances out of workflow definitions.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/protocol"
)

type Registry struct {
	logger    *slog.Logger
	factories map[string]protocol.NodeFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		logger:    logger,
		factories: make(map[string]protocol.NodeFactory),
	}
}

func (r *Registry) RegisterNode(factory protocol.NodeFactory) {
	r.factories[factory.Kind()] = factory
}

// KindKey derives the factory key for a workflow node. Triggers are keyed by
// their trigger family so both schedule variants share one factory.
func KindKey(node *models.Node) string {
	if node.IsTrigger() {
		if node.IsSchedule() {
			return "trigger:schedule"
		}

		return "trigger:manual"
	}

	return string(node.Kind)
}

// Create builds the executable node for a workflow node definition. The
// parameters are checked against the factory's JSON schema before the
// factory runs its own validation.
func (r *Registry) Create(node *models.Node) (protocol.Node, error) {
	key := KindKey(node)

	factory, ok := r.factories[key]
	if !ok {
		return nil, fmt.Errorf("node kind '%s' not registered", key)
	}

	parameters := effectiveParameters(node)

	if err := r.validateParameters(factory, parameters); err != nil {
		return nil, fmt.Errorf("invalid parameters for node '%s': %w", node.Name, err)
	}

	return factory.Create(node.Name, parameters)
}

// effectiveParameters projects the node definition into the parameter bag the
// factory understands. Schedule triggers carry their variant on the
// definition's trigger kind rather than in the bag.
func effectiveParameters(node *models.Node) map[string]any {
	if !node.IsSchedule() {
		return node.Parameters
	}

	parameters := make(map[string]any, len(node.Parameters)+1)
	for key, value := range node.Parameters {
		parameters[key] = value
	}

	switch node.TriggerKind {
	case models.TriggerKindScheduleCron:
		parameters["schedule_type"] = "cron"
	case models.TriggerKindScheduleInterval:
		parameters["schedule_type"] = "interval"
	}

	return parameters
}

// Kinds lists the registered factory keys in stable order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}

	sort.Strings(kinds)

	return kinds
}

// Schema returns the parameter schema for a registered kind.
func (r *Registry) Schema(kind string) (map[string]any, bool) {
	factory, ok := r.factories[kind]
	if !ok {
		return nil, false
	}

	return factory.Schema(), true
}

func (r *Registry) validateParameters(factory protocol.NodeFactory, parameters map[string]any) error {
	schema := factory.Schema()
	if schema == nil {
		return nil
	}

	if parameters == nil {
		parameters = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(parameters)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		descriptions := make([]string, 0, len(result.Errors()))
		for _, violation := range result.Errors() {
			descriptions = append(descriptions, violation.String())
		}

		return fmt.Errorf("schema validation failed: %s", strings.Join(descriptions, "; "))
	}

	return nil
}

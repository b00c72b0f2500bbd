package manualtrigger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxo-hq/fluxo/pkg/models"
)

func TestManualTriggerNode_Execute(t *testing.T) {
	node := NewManualTriggerNode("start", map[string]any{})

	ec := models.NewExecutionContext("wf-1", nil)

	result, err := node.Execute(context.Background(), ec)
	require.NoError(t, err)
	require.NotNil(t, result)

	output, ok := result.Output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "manual", output["trigger_type"])

	timestamp, ok := output["timestamp"].(string)
	require.True(t, ok)

	_, err = time.Parse(time.RFC3339, timestamp)
	assert.NoError(t, err)
}

func TestFactory_Create(t *testing.T) {
	factory := NewFactory()
	assert.Equal(t, "trigger:manual", factory.Kind())

	node, err := factory.Create("start", map[string]any{})
	require.NoError(t, err)
	assert.NoError(t, node.Validate())
}

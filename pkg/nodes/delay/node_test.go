package delay

import (
	"context"
	"testing"
	"time"

	"github.com/dukex/classflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_Execute(t *testing.T) {
	wf := testutil.CreateTestWorkflow(testutil.WithNodes(
		testutil.CreateTestNode(NodeType, testutil.WithNodeID("wait"), testutil.WithData(map[string]any{"duration": "{{wait}}"})),
	))

	result, err := NewExecutor().Execute(context.Background(), testutil.NewRequest(wf, "wait", map[string]any{"wait": 5}))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, int64(5), result.Output["delayedMs"])
}

func TestExecutor_CancelledContext(t *testing.T) {
	wf := testutil.CreateTestWorkflow(testutil.WithNodes(
		testutil.CreateTestNode(NodeType, testutil.WithNodeID("wait"), testutil.WithData(map[string]any{"duration": "1h"})),
	))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewExecutor().Execute(ctx, testutil.NewRequest(wf, "wait", nil))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecutor_InvalidDuration(t *testing.T) {
	for _, duration := range []any{"later", "48h", -5} {
		wf := testutil.CreateTestWorkflow(testutil.WithNodes(
			testutil.CreateTestNode(NodeType, testutil.WithNodeID("wait"), testutil.WithData(map[string]any{"duration": duration})),
		))

		result, err := NewExecutor().Execute(context.Background(), testutil.NewRequest(wf, "wait", nil))
		require.NoError(t, err)
		assert.False(t, result.Success, "duration %v", duration)
	}
}

package loop

import (
	"context"
	"testing"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopWorkflow(items any, extra map[string]any) *models.Workflow {
	data := map[string]any{"items": items}
	for k, v := range extra {
		data[k] = v
	}

	return testutil.CreateTestWorkflow(
		testutil.WithNodes(
			testutil.CreateTestNode(NodeType, testutil.WithNodeID("each"), testutil.WithData(data)),
			testutil.CreateTestNode("log", testutil.WithNodeID("body")),
			testutil.CreateTestNode("log", testutil.WithNodeID("after")),
		),
		testutil.WithEdges(
			testutil.Edge("start", "each", ""),
			testutil.Edge("each", "body", OutputPortItem),
			testutil.Edge("body", "each", ""),
			testutil.Edge("each", "after", OutputPortCompleted),
		),
	)
}

func TestExecutor_FourInvocations(t *testing.T) {
	wf := loopWorkflow([]any{1, 2, 3}, nil)
	vars := map[string]any{}
	executor := NewExecutor()

	var outputs []map[string]any
	var next [][]string

	for range 4 {
		result, err := executor.Execute(context.Background(), testutil.NewRequest(wf, "each", vars))
		require.NoError(t, err)
		require.True(t, result.Success)

		outputs = append(outputs, result.Output)
		next = append(next, result.NextNodes)
	}

	for i, expected := range []any{1, 2, 3} {
		assert.Equal(t, expected, outputs[i]["currentItem"])
		assert.NotContains(t, outputs[i], "loopFinished")
		assert.Equal(t, []string{"body"}, next[i])
	}

	assert.Equal(t, true, outputs[3]["loopFinished"])
	assert.NotContains(t, outputs[3], "currentItem")
	assert.Equal(t, []string{"after"}, next[3])

	state := vars[StateKey("each")].(*models.LoopState)
	assert.Equal(t, 3, state.CurrentIndex)
	assert.Equal(t, 3, state.Total)
	assert.Equal(t, 3, vars["currentItem"], "last item stays in context")
}

func TestExecutor_ItemsSources(t *testing.T) {
	students := []any{map[string]any{"name": "Ana"}, map[string]any{"name": "Bia"}}

	tests := []struct {
		name  string
		items any
		vars  map[string]any
		first any
		total int
	}{
		{name: "context key name", items: "students", vars: map[string]any{"students": students}, first: students[0], total: 2},
		{name: "template", items: "{{roster.students}}", vars: map[string]any{"roster": map[string]any{"students": students}}, first: students[0], total: 2},
		{name: "typed slice", items: "ids", vars: map[string]any{"ids": []string{"a", "b", "c"}}, first: "a", total: 3},
		{name: "json literal", items: `["x","y"]`, vars: map[string]any{}, first: "x", total: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := loopWorkflow(tt.items, nil)

			result, err := NewExecutor().Execute(context.Background(), testutil.NewRequest(wf, "each", tt.vars))
			require.NoError(t, err)

			assert.Equal(t, tt.first, result.Output["currentItem"])
			assert.Equal(t, tt.total, tt.vars[StateKey("each")].(*models.LoopState).Total)
		})
	}
}

func TestExecutor_EmptyOrInvalidItemsFinishImmediately(t *testing.T) {
	for _, items := range []any{[]any{}, "unknownKey", 42} {
		wf := loopWorkflow(items, nil)

		result, err := NewExecutor().Execute(context.Background(), testutil.NewRequest(wf, "each", map[string]any{}))
		require.NoError(t, err)

		assert.Equal(t, true, result.Output["loopFinished"])
		assert.Equal(t, []string{"after"}, result.NextNodes)
	}
}

func TestExecutor_CustomItemKeyAndUnlabelledBody(t *testing.T) {
	wf := testutil.CreateTestWorkflow(
		testutil.WithNodes(
			testutil.CreateTestNode(NodeType, testutil.WithNodeID("each"), testutil.WithData(map[string]any{
				"items":          []any{"q1"},
				"currentItemKey": "question",
			})),
			testutil.CreateTestNode("log", testutil.WithNodeID("body")),
		),
		testutil.WithEdges(testutil.Edge("each", "body", "")),
	)

	vars := map[string]any{}

	result, err := NewExecutor().Execute(context.Background(), testutil.NewRequest(wf, "each", vars))
	require.NoError(t, err)

	assert.Equal(t, "q1", result.Output["question"])
	assert.Equal(t, "q1", vars["question"])
	assert.Equal(t, []string{"body"}, result.NextNodes)
}

func TestExecutor_StateIsPerContext(t *testing.T) {
	wf := loopWorkflow([]any{"a", "b"}, nil)
	executor := NewExecutor()

	first := map[string]any{}
	second := map[string]any{}

	_, err := executor.Execute(context.Background(), testutil.NewRequest(wf, "each", first))
	require.NoError(t, err)
	_, err = executor.Execute(context.Background(), testutil.NewRequest(wf, "each", first))
	require.NoError(t, err)

	result, err := executor.Execute(context.Background(), testutil.NewRequest(wf, "each", second))
	require.NoError(t, err)

	assert.Equal(t, "a", result.Output["currentItem"], "a separate context starts from the first item")
}

func TestExecutor_RestoresMapState(t *testing.T) {
	wf := loopWorkflow([]any{"ignored"}, nil)
	vars := map[string]any{
		StateKey("each"): map[string]any{"items": []any{"a", "b"}, "currentIndex": float64(1), "total": float64(2)},
	}

	result, err := NewExecutor().Execute(context.Background(), testutil.NewRequest(wf, "each", vars))
	require.NoError(t, err)

	assert.Equal(t, "b", result.Output["currentItem"])
}

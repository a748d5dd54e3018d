package nodes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

func TestConditionExecutor_EvaluatesAgainstPreviousOutput(t *testing.T) {
	executor := &ConditionExecutor{Timeout: time.Second}

	cases := []struct {
		name       string
		expression string
		want       bool
	}{
		{"status matches", "previousOutput.statusCode === 200", true},
		{"status differs", "previousOutput.statusCode === 404", false},
		{"input data", "inputData.amount > 100", true},
		{"context access", "context.previousOutput.isSuccess && inputData.amount < 1000", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ectx := testContext(t, map[string]any{"amount": 250}, map[string]any{"statusCode": 200, "isSuccess": true})
			node := testNode(t, domain.NodeTypeCondition, map[string]any{"condition": tc.expression})

			result, err := executor.Execute(context.Background(), node, ectx)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"result": tc.want}, result)

			got, ok := ectx.ConditionResult()
			assert.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConditionExecutor_AcceptsExpressionKey(t *testing.T) {
	executor := &ConditionExecutor{}
	node := testNode(t, domain.NodeTypeCondition, map[string]any{"expression": "1 + 1 === 2"})

	result, err := executor.Execute(context.Background(), node, testContext(t, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"result": true}, result)
}

func TestConditionExecutor_RejectsNonBooleanResult(t *testing.T) {
	executor := &ConditionExecutor{}

	cases := []struct {
		name       string
		expression string
		want       string
	}{
		{"number", "previousOutput.statusCode", "must evaluate to a boolean"},
		{"string", "'yes'", "got string"},
		{"undefined", "previousOutput.missing", "got null"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ectx := testContext(t, nil, map[string]any{"statusCode": 200})
			node := testNode(t, domain.NodeTypeCondition, map[string]any{"condition": tc.expression})

			_, err := executor.Execute(context.Background(), node, ectx)
			require.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.Contains(t, err.Error(), tc.want)

			_, ok := ectx.ConditionResult()
			assert.False(t, ok)
		})
	}
}

func TestConditionExecutor_MissingExpression(t *testing.T) {
	executor := &ConditionExecutor{}
	node := testNode(t, domain.NodeTypeCondition, map[string]any{})

	_, err := executor.Execute(context.Background(), node, testContext(t, nil, nil))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestConditionExecutor_SyntaxError(t *testing.T) {
	executor := &ConditionExecutor{}
	node := testNode(t, domain.NodeTypeCondition, map[string]any{"condition": "previousOutput.statusCode ==="})

	_, err := executor.Execute(context.Background(), node, testContext(t, nil, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaluate condition")
}

func TestConditionExecutor_Timeout(t *testing.T) {
	executor := &ConditionExecutor{Timeout: 50 * time.Millisecond}
	node := testNode(t, domain.NodeTypeCondition, map[string]any{"condition": "while (true) {}"})

	_, err := executor.Execute(context.Background(), node, testContext(t, nil, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestConditionExecutor_Cancelled(t *testing.T) {
	executor := &ConditionExecutor{}
	node := testNode(t, domain.NodeTypeCondition, map[string]any{"condition": "while (true) {}"})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := executor.Execute(ctx, node, testContext(t, nil, nil))
	assert.ErrorIs(t, err, context.Canceled)
}

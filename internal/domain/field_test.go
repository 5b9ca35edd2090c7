package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitiativeSetField_Effort(t *testing.T) {
	i := &Initiative{}
	require.NoError(t, i.SetField(FieldEstimatedEffort, "2.5"))
	assert.Equal(t, 2.5, i.EstimatedEffort)

	v, err := i.FieldValue(FieldEstimatedEffort)
	require.NoError(t, err)
	assert.Equal(t, "2.5", v)
}

func TestInitiativeSetField_NegativeEffortRejected(t *testing.T) {
	i := &Initiative{EstimatedEffort: 4}
	err := i.SetField(FieldEstimatedEffort, "-1")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, 4.0, i.EstimatedEffort, "value must be untouched")
}

func TestInitiativeSetField_ETA(t *testing.T) {
	i := &Initiative{ETA: "2025-01-01"}
	require.NoError(t, i.SetField(FieldETA, "2025-03-31"))
	assert.Equal(t, "2025-03-31", i.ETA)

	require.NoError(t, i.SetField(FieldETA, ""))
	assert.Equal(t, "", i.ETA)

	err := i.SetField(FieldETA, "31/03/2025")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestInitiativeSetField_CompletionRateBounds(t *testing.T) {
	i := &Initiative{}
	require.NoError(t, i.SetField(FieldCompletionRate, "100"))
	assert.Equal(t, 100, i.CompletionRate)
	assert.Error(t, i.SetField(FieldCompletionRate, "101"))
	assert.Error(t, i.SetField(FieldCompletionRate, "-1"))
	assert.Error(t, i.SetField(FieldCompletionRate, "half"))
}

func TestInitiativeSetField_BaselineIsImmutable(t *testing.T) {
	i := &Initiative{OriginalEstimatedEffort: 3, OriginalETA: "2025-01-01"}
	assert.True(t, IsValidation(i.SetField(FieldOriginalEstimatedEffort, "5")))
	assert.True(t, IsValidation(i.SetField(FieldOriginalETA, "2026-01-01")))
	assert.Equal(t, 3.0, i.OriginalEstimatedEffort)
	assert.Equal(t, "2025-01-01", i.OriginalETA)
}

func TestInitiativeSetField_StatusAndPriority(t *testing.T) {
	i := &Initiative{}
	require.NoError(t, i.SetField(FieldStatus, "Delayed"))
	assert.Equal(t, StatusAtRisk, i.Status)
	require.NoError(t, i.SetField(FieldPriority, "p0"))
	assert.Equal(t, PriorityP0, i.Priority)
	assert.Error(t, i.SetField(FieldPriority, "P9"))
}

func TestInitiativeSetField_Unknown(t *testing.T) {
	i := &Initiative{}
	assert.True(t, IsValidation(i.SetField(Field("colour"), "red")))
	_, err := i.FieldValue(Field("colour"))
	assert.Error(t, err)
}

func TestTaskSetField(t *testing.T) {
	task := &Task{}
	require.NoError(t, task.SetField(FieldActualEffort, "0.4"))
	require.NoError(t, task.SetField(FieldOwnerID, " u2 "))
	require.NoError(t, task.SetField(FieldStatus, "in_progress"))
	assert.Equal(t, 0.4, task.ActualEffort)
	assert.Equal(t, "u2", task.OwnerID)
	assert.Equal(t, StatusInProgress, task.Status)
	assert.Error(t, task.SetField(FieldQuarter, "Q1"))
}

func TestFormatEffort(t *testing.T) {
	assert.Equal(t, "2", FormatEffort(2))
	assert.Equal(t, "0.25", FormatEffort(0.25))
}

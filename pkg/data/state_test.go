package data

import (
	"testing"

	"github.com/raidtrust/raidtrust/pkg/trust"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDataState_NilDB(t *testing.T) {
	_, err := GetDataState(nil)
	assert.Error(t, err)
}

func TestGetDataState_Empty(t *testing.T) {
	db := setupTestDB(t)
	state, err := GetDataState(db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), state["subjects"])
	assert.Equal(t, int64(0), state["feedback"])
}

func TestGetDataState(t *testing.T) {
	db := setupTestDB(t)

	s := saveTestSubject(t, db, "scrapper")
	require.NoError(t, SaveFeedback(db, &Feedback{SubjectID: s.ID, Outcome: trust.OutcomePositive, Weight: 1}))

	f := &Feedback{SubjectID: s.ID, Outcome: trust.OutcomeCaution, Weight: 1}
	require.NoError(t, SaveFeedback(db, f))
	require.NoError(t, DisputeFeedback(db, f.ID))

	state, err := GetDataState(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state["subjects"])
	assert.Equal(t, int64(0), state["scored_subjects"])
	assert.Equal(t, int64(2), state["feedback"])
	assert.Equal(t, int64(1), state["active_feedback"])
	assert.Equal(t, int64(1), state["disputed_feedback"])
	assert.Equal(t, int64(0), state["removed_feedback"])
}

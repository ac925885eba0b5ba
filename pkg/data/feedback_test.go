package data

import (
	"database/sql"
	"testing"

	"github.com/raidtrust/raidtrust/pkg/trust"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveTestSubject(t *testing.T, db *sql.DB, handle string) *Subject {
	t.Helper()
	s := &Subject{Handle: handle}
	require.NoError(t, SaveSubject(db, s))
	return s
}

func TestSaveFeedback(t *testing.T) {
	db := setupTestDB(t)
	s := saveTestSubject(t, db, "scrapper")

	f := &Feedback{
		SubjectID: s.ID,
		Reporter:  "witness",
		Outcome:   trust.OutcomePositive,
		Weight:    1.5,
		Note:      "shared loot after raid",
	}
	require.NoError(t, SaveFeedback(db, f))
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, trust.StatusActive, f.Status)
	assert.NotEmpty(t, f.CreatedAt)

	list, err := ListFeedback(db, FeedbackFilter{SubjectID: s.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.ID, list[0].ID)
	assert.Equal(t, "witness", list[0].Reporter)
	assert.InDelta(t, 1.5, list[0].Weight, 0.001)
}

func TestSaveFeedback_Invalid(t *testing.T) {
	db := setupTestDB(t)
	s := saveTestSubject(t, db, "scrapper")

	assert.Error(t, SaveFeedback(nil, &Feedback{SubjectID: s.ID, Outcome: trust.OutcomePositive}))
	assert.Error(t, SaveFeedback(db, nil))
	assert.Error(t, SaveFeedback(db, &Feedback{Outcome: trust.OutcomePositive}))
	assert.Error(t, SaveFeedback(db, &Feedback{SubjectID: s.ID, Outcome: "stellar"}))
	assert.Error(t, SaveFeedback(db, &Feedback{SubjectID: s.ID, Outcome: trust.OutcomeCaution, Weight: -1}))
	assert.Error(t, SaveFeedback(db, &Feedback{SubjectID: s.ID, Outcome: trust.OutcomePositive, Status: "archived"}))
}

func TestListFeedback_Filters(t *testing.T) {
	db := setupTestDB(t)
	a := saveTestSubject(t, db, "alpha")
	b := saveTestSubject(t, db, "bravo")

	require.NoError(t, SaveFeedback(db, &Feedback{SubjectID: a.ID, Outcome: trust.OutcomePositive, Weight: 1}))
	require.NoError(t, SaveFeedback(db, &Feedback{SubjectID: a.ID, Outcome: trust.OutcomeCaution, Weight: 1, Status: trust.StatusDisputed}))
	require.NoError(t, SaveFeedback(db, &Feedback{SubjectID: b.ID, Outcome: trust.OutcomeNeutral, Weight: 1}))

	list, err := ListFeedback(db, FeedbackFilter{SubjectID: a.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = ListFeedback(db, FeedbackFilter{Status: trust.StatusDisputed})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].SubjectID)

	list, err = ListFeedback(db, FeedbackFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = ListFeedback(db, FeedbackFilter{Since: "2099-01-01T00:00:00Z"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDisputeFeedback(t *testing.T) {
	db := setupTestDB(t)
	s := saveTestSubject(t, db, "scrapper")

	f := &Feedback{SubjectID: s.ID, Outcome: trust.OutcomeCaution, Weight: 1}
	require.NoError(t, SaveFeedback(db, f))

	require.NoError(t, DisputeFeedback(db, f.ID))

	status, err := getFeedbackStatus(db, f.ID)
	require.NoError(t, err)
	assert.Equal(t, trust.StatusDisputed, status)

	// Already disputed, cannot dispute again.
	assert.Error(t, DisputeFeedback(db, f.ID))
}

func TestDisputeFeedback_NotFound(t *testing.T) {
	db := setupTestDB(t)
	assert.Error(t, DisputeFeedback(db, "no-such-id"))
}

func TestResolveDispute(t *testing.T) {
	tests := []struct {
		resolution Resolution
		want       trust.Status
	}{
		{ResolutionUpheld, trust.StatusRemoved},
		{ResolutionRejected, trust.StatusActive},
		{ResolutionPartial, trust.StatusDisputed},
	}

	for _, tt := range tests {
		t.Run(string(tt.resolution), func(t *testing.T) {
			db := setupTestDB(t)
			s := saveTestSubject(t, db, "scrapper")

			f := &Feedback{SubjectID: s.ID, Outcome: trust.OutcomeCaution, Weight: 1}
			require.NoError(t, SaveFeedback(db, f))
			require.NoError(t, DisputeFeedback(db, f.ID))

			require.NoError(t, ResolveDispute(db, f.ID, tt.resolution))

			status, err := getFeedbackStatus(db, f.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestResolveDispute_NotDisputed(t *testing.T) {
	db := setupTestDB(t)
	s := saveTestSubject(t, db, "scrapper")

	f := &Feedback{SubjectID: s.ID, Outcome: trust.OutcomeCaution, Weight: 1}
	require.NoError(t, SaveFeedback(db, f))

	assert.Error(t, ResolveDispute(db, f.ID, ResolutionUpheld))
}

func TestResolveDispute_UnknownResolution(t *testing.T) {
	db := setupTestDB(t)
	s := saveTestSubject(t, db, "scrapper")

	f := &Feedback{SubjectID: s.ID, Outcome: trust.OutcomeCaution, Weight: 1}
	require.NoError(t, SaveFeedback(db, f))
	require.NoError(t, DisputeFeedback(db, f.ID))

	assert.Error(t, ResolveDispute(db, f.ID, "settled"))
}

func TestRemoveFeedback(t *testing.T) {
	db := setupTestDB(t)
	s := saveTestSubject(t, db, "scrapper")

	f := &Feedback{SubjectID: s.ID, Outcome: trust.OutcomePositive, Weight: 1}
	require.NoError(t, SaveFeedback(db, f))

	require.NoError(t, RemoveFeedback(db, f.ID))

	status, err := getFeedbackStatus(db, f.ID)
	require.NoError(t, err)
	assert.Equal(t, trust.StatusRemoved, status)

	// Removing again is a no-op.
	require.NoError(t, RemoveFeedback(db, f.ID))
}

func TestGetSubjectEvents(t *testing.T) {
	db := setupTestDB(t)
	s := saveTestSubject(t, db, "scrapper")

	require.NoError(t, SaveFeedback(db, &Feedback{SubjectID: s.ID, Outcome: trust.OutcomePositive, Weight: 2}))
	require.NoError(t, SaveFeedback(db, &Feedback{SubjectID: s.ID, Outcome: trust.OutcomeCaution, Weight: 1, Status: trust.StatusDisputed}))

	events, err := GetSubjectEvents(db, s.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, e := range events {
		assert.False(t, e.CreatedAt.IsZero())
	}
}

func TestGetSubjectEvents_Empty(t *testing.T) {
	db := setupTestDB(t)
	events, err := GetSubjectEvents(db, "no-such-subject")
	require.NoError(t, err)
	assert.Empty(t, events)
}

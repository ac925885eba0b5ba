package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveSubject(t *testing.T) {
	db := setupTestDB(t)

	s := &Subject{Handle: "scrapper", DisplayName: "Scrapper", Platform: "steam"}
	require.NoError(t, SaveSubject(db, s))
	assert.NotEmpty(t, s.ID)
	assert.NotEmpty(t, s.CreatedAt)

	got, err := GetSubject(db, "scrapper")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, "Scrapper", got.DisplayName)
	assert.Equal(t, "steam", got.Platform)
	assert.Nil(t, got.Score)
}

func TestSaveSubject_UpsertKeepsID(t *testing.T) {
	db := setupTestDB(t)

	s1 := &Subject{Handle: "rustbucket", DisplayName: "Rust"}
	require.NoError(t, SaveSubject(db, s1))

	s2 := &Subject{Handle: "rustbucket", DisplayName: "Rust Bucket", Platform: "psn"}
	require.NoError(t, SaveSubject(db, s2))

	got, err := GetSubject(db, "rustbucket")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s1.ID, got.ID)
	assert.Equal(t, "Rust Bucket", got.DisplayName)
	assert.Equal(t, "psn", got.Platform)
}

func TestSaveSubject_Invalid(t *testing.T) {
	db := setupTestDB(t)
	assert.Error(t, SaveSubject(db, nil))
	assert.Error(t, SaveSubject(db, &Subject{}))
	assert.Error(t, SaveSubject(nil, &Subject{Handle: "x"}))
}

func TestGetSubject_NotFound(t *testing.T) {
	db := setupTestDB(t)
	s, err := GetSubject(db, "ghost")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestQuerySubjects(t *testing.T) {
	db := setupTestDB(t)

	for _, h := range []string{"raider-one", "raider-two", "lonewolf"} {
		require.NoError(t, SaveSubject(db, &Subject{Handle: h}))
	}

	list, err := QuerySubjects(db, "raider", 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = QuerySubjects(db, "wolf", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "lonewolf", list[0].Handle)

	list, err = QuerySubjects(db, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestQuerySubjects_Limit(t *testing.T) {
	db := setupTestDB(t)

	for _, h := range []string{"a1", "a2", "a3"} {
		require.NoError(t, SaveSubject(db, &Subject{Handle: h}))
	}

	list, err := QuerySubjects(db, "a", 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestQuerySubjects_NilDB(t *testing.T) {
	_, err := QuerySubjects(nil, "x", 1)
	assert.Error(t, err)
}

func TestRenameSubject(t *testing.T) {
	db := setupTestDB(t)

	s := &Subject{Handle: "oldname"}
	require.NoError(t, SaveSubject(db, s))
	require.NoError(t, SaveFeedback(db, &Feedback{SubjectID: s.ID, Outcome: "positive", Weight: 1}))

	res, err := RenameSubject(db, "oldname", "newname")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Records)

	got, err := GetSubject(db, "newname")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)

	// Feedback history stays attached via the subject ID.
	events, err := GetSubjectEvents(db, got.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestRenameSubject_TakenHandle(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, SaveSubject(db, &Subject{Handle: "one"}))
	require.NoError(t, SaveSubject(db, &Subject{Handle: "two"}))

	_, err := RenameSubject(db, "one", "two")
	assert.Error(t, err)
}

func TestRenameSubject_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := RenameSubject(db, "ghost", "phantom")
	assert.Error(t, err)
}

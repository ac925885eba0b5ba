package trust

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutcome(t *testing.T) {
	o, err := ParseOutcome("positive")
	require.NoError(t, err)
	assert.Equal(t, OutcomePositive, o)

	o, err = ParseOutcome(" Caution ")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCaution, o)

	_, err = ParseOutcome("great")
	assert.Error(t, err)

	_, err = ParseOutcome("")
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("active")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, s)

	s, err = ParseStatus("DISPUTED")
	require.NoError(t, err)
	assert.Equal(t, StatusDisputed, s)

	s, err = ParseStatus("removed")
	require.NoError(t, err)
	assert.Equal(t, StatusRemoved, s)

	_, err = ParseStatus("archived")
	assert.Error(t, err)
}

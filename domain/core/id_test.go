package core

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	assert.Len(t, ids, numIDs)
}

func TestNewAssessmentID_IsUUID(t *testing.T) {
	id := NewAssessmentID()
	parsed, err := uuid.Parse(id.String())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestParseModelID(t *testing.T) {
	id, err := ParseModelID("knn")
	require.NoError(t, err)
	assert.Equal(t, ModelID("knn"), id)

	_, err = ParseModelID("")
	assert.Error(t, err)
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrModelNotFound))
	assert.True(t, IsNotFoundError(NewNotFoundError("model", "svm")))
	assert.True(t, IsValidationError(NewValidationError("age", "out of range")))
	assert.False(t, IsValidationError(ErrSchemaMismatch))
}

func TestNewHash(t *testing.T) {
	h := NewHash([]byte("abc"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h.String())
	assert.Equal(t, "ba7816bf8f01", h.Short())
	assert.False(t, h.IsEmpty())
	assert.True(t, Hash("").IsEmpty())
	assert.Equal(t, "abc", Hash("abc").Short())
}

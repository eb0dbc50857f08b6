package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDSetStoredAsArray(t *testing.T) {
	s := NewIDSet("b", "a", "b")

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(data))

	var decoded IDSet
	require.NoError(t, json.Unmarshal([]byte(`["x","y","x"]`), &decoded))
	assert.Len(t, decoded, 2)
	assert.True(t, decoded.Has("x"))
	assert.True(t, decoded.Has("y"))
}

func TestIDSetNullDecodesEmpty(t *testing.T) {
	var decoded IDSet
	require.NoError(t, json.Unmarshal([]byte(`null`), &decoded))
	assert.Empty(t, decoded)
	assert.False(t, decoded.Has("x"))
}

func TestIDSetCloneIsIndependent(t *testing.T) {
	s := NewIDSet("a")
	c := s.Clone()
	c.Add("b")
	c.Remove("a")

	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("b"))
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := NewValidationError("title", "Please enter the book title.")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Please enter the book title.", err.Error())

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "title", ve.Field)
}

func TestValidRoleAndView(t *testing.T) {
	assert.True(t, ValidRole(RoleBuyer))
	assert.True(t, ValidRole(RoleSeller))
	assert.False(t, ValidRole("admin"))
	assert.True(t, ValidView(ViewCart))
	assert.False(t, ValidView("checkout"))
}

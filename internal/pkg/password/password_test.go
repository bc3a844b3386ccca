package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateBounds(t *testing.T) {
	require.ErrorIs(t, Validate("short"), ErrTooShort)
	require.ErrorIs(t, Validate(strings.Repeat("x", MaxLength+1)), ErrTooLong)
	require.NoError(t, Validate(strings.Repeat("x", MinLength)))
	require.NoError(t, Validate(strings.Repeat("x", MaxLength)))
}

func TestHashRoundTrip(t *testing.T) {
	hash, err := Hash("correct horse")
	require.NoError(t, err)
	require.NoError(t, Compare(hash, "correct horse"))
	require.Error(t, Compare(hash, "wrong horse"))

	_, err = Hash("tiny")
	require.ErrorIs(t, err, ErrTooShort)
}

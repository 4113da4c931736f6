package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, expires, err := signer.Generate("gen-1", "gen-1/timetable.csv")
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))

	genID, path, _, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "gen-1", genID)
	assert.Equal(t, "gen-1/timetable.csv", path)
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, _, err := signer.Generate("gen-1", "gen-1/timetable.csv")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	assert.Error(t, err)

	other := NewSignedURLSigner("different", time.Hour)
	_, _, _, err = other.Parse(token, false)
	assert.Error(t, err)
}

func TestSignedURLExpiry(t *testing.T) {
	signer := &SignedURLSigner{secret: []byte("secret"), ttl: -time.Minute}

	token, _, err := signer.Generate("gen-1", "file.csv")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token, false)
	assert.Error(t, err)

	_, _, _, err = signer.Parse(token, true)
	assert.NoError(t, err)
}

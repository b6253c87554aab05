// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	enc, err := EncryptString("bearer-token-123")
	require.NoError(t, err)
	assert.True(t, IsEncrypted(enc))
	assert.NotContains(t, enc, "bearer-token-123")

	plain, err := DecryptString(enc)
	require.NoError(t, err)
	assert.Equal(t, "bearer-token-123", plain)
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	a, err := EncryptString("same")
	require.NoError(t, err)
	b, err := EncryptString("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptPlaintextPassthrough(t *testing.T) {
	// Pre-encryption session files hold bare tokens.
	plain, err := DecryptString("legacy-plain-token")
	require.NoError(t, err)
	assert.Equal(t, "legacy-plain-token", plain)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	_, err := DecryptString("ENC:not-base64!!!")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = DecryptString("ENC:QUJD") // valid base64, too short
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestDecryptDetectsTampering(t *testing.T) {
	enc, err := EncryptString("token")
	require.NoError(t, err)

	// Flip a character in the ciphertext body.
	tampered := []byte(enc)
	last := len(tampered) - 2
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	_, err = DecryptString(string(tampered))
	assert.Error(t, err)
}

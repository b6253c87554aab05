// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package secrets protects values at rest in the session file. The auth
// token is stored AES-256-GCM encrypted under a key derived from stable
// machine identity, so a copied session file is useless on another
// machine. This is casual-reading protection, not protection from a
// determined attacker with local access.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// EncryptedPrefix marks a stored value as encrypted
// (format: ENC:base64(salt|nonce|ciphertext)).
const EncryptedPrefix = "ENC:"

const (
	keySize    = 32
	saltSize   = 16
	iterations = 600000
)

var (
	// ErrInvalidCiphertext indicates the stored value is not a valid
	// encrypted blob.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	// ErrDecryptionFailed indicates the key is wrong or the data was
	// tampered with.
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
)

// IsEncrypted reports whether a stored value carries the ENC: prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}

// EncryptString encrypts a value for storage in the session file.
func EncryptString(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(salt))
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	blob := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)

	return EncryptedPrefix + base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptString reverses EncryptString. A value without the ENC: prefix
// is returned unchanged: session files written before encryption was
// introduced hold plaintext tokens.
func DecryptString(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}

	blob, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	if len(blob) < saltSize+12 {
		return "", ErrInvalidCiphertext
	}

	salt := blob[:saltSize]

	block, err := aes.NewCipher(deriveKey(salt))
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	rest := blob[saltSize:]
	if len(rest) < gcm.NonceSize() {
		return "", ErrInvalidCiphertext
	}
	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}

// deriveKey stretches stable machine identity into an AES key. The salt
// stored with each blob keeps identical plaintexts from producing
// identical ciphertexts.
func deriveKey(salt []byte) []byte {
	host, _ := os.Hostname()
	home, _ := os.UserHomeDir()
	secret := "farqad-session:" + host + ":" + home
	return pbkdf2.Key([]byte(secret), salt, iterations, keySize, sha256.New)
}

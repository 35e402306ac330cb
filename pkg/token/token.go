// Package token provides compact, signed tokens for embedding JSON payloads.
//
// Tokens use HMAC-SHA256 with truncated 8-byte signatures for balance between
// security and compactness. The notification pipeline uses them as reply
// capabilities embedded in synthesized reply-to addresses. Not suitable for
// high-value or long-lived credentials.
//
// Token format: base64url(payload).base64url(signature)
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrSignatureInvalid = errors.New("signature mismatch")
)

// Generate creates a token by JSON encoding the payload and appending an
// 8-byte truncated HMAC-SHA256 signature.
func Generate[T any](payload T, secret string) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	payloadEnc := base64.RawURLEncoding.EncodeToString(data)
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	sig := h.Sum(nil)[:8]
	sigEnc := base64.RawURLEncoding.EncodeToString(sig)

	return payloadEnc + "." + sigEnc, nil
}

// Parse verifies the token's signature and decodes the JSON payload into the
// generic type.
func Parse[T any](tok string, secret string) (T, error) {
	var payload T
	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		return payload, ErrInvalidToken
	}

	data, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return payload, err
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return payload, err
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	expectedSig := h.Sum(nil)[:8]

	if subtle.ConstantTimeCompare(sig, expectedSig) != 1 {
		return payload, ErrSignatureInvalid
	}

	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, err
	}

	return payload, nil
}

// LastSegment returns the final dot-separated segment of a token, the
// truncated signature. Reply addresses embed only this segment to stay within
// address-length limits while still letting the reply pipeline correlate the
// sender.
func LastSegment(tok string) string {
	if idx := strings.LastIndexByte(tok, '.'); idx >= 0 {
		return tok[idx+1:]
	}
	return tok
}

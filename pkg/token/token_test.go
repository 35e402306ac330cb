package token_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/token"
)

type replyPayload struct {
	UserID  string `json:"uid"`
	TopicID string `json:"tid"`
}

const testSecret = "test-signing-secret"

func TestGenerateParse(t *testing.T) {
	payload := replyPayload{UserID: "user-1", TopicID: "topic-9"}

	tok, err := token.Generate(payload, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.Equal(t, 2, len(strings.Split(tok, ".")))

	parsed, err := token.Parse[replyPayload](tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, payload, parsed)
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := token.Generate(replyPayload{UserID: "user-1"}, testSecret)
	require.NoError(t, err)

	_, err = token.Parse[replyPayload](tok, "other-secret")
	assert.ErrorIs(t, err, token.ErrSignatureInvalid)
}

func TestParse_MalformedToken(t *testing.T) {
	_, err := token.Parse[replyPayload]("not-a-token", testSecret)
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	_, err = token.Parse[replyPayload]("a.b.c", testSecret)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestParse_TamperedPayload(t *testing.T) {
	tok, err := token.Generate(replyPayload{UserID: "user-1"}, testSecret)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	tampered := parts[0] + "x." + parts[1]

	_, err = token.Parse[replyPayload](tampered, testSecret)
	require.Error(t, err)
}

func TestLastSegment(t *testing.T) {
	tok, err := token.Generate(replyPayload{UserID: "user-1"}, testSecret)
	require.NoError(t, err)

	seg := token.LastSegment(tok)
	parts := strings.Split(tok, ".")
	assert.Equal(t, parts[1], seg)
	assert.NotContains(t, seg, ".")

	// Tokens without separators are returned whole.
	assert.Equal(t, "plain", token.LastSegment("plain"))
}

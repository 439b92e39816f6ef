package accesstoken

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "paygate/internal/platform/errors"
)

var secret = bytes.Repeat([]byte("k"), MinSecretLen)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestIssueVerify_RoundTrip(t *testing.T) {
	now := time.Unix(1_760_000_000, 0)
	iss, err := New(secret, WithClock(fixedClock(now)))
	require.NoError(t, err)

	tok, p, err := iss.Issue("5xRef", 50_000, "Recipient111")
	require.NoError(t, err)
	assert.Equal(t, Payload{Reference: "5xRef", Amount: 50_000, IssuedAt: now.Unix(), Recipient: "Recipient111"}, p)

	got, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	body, sig, ok := strings.Cut(tok, ".")
	require.True(t, ok)
	assert.NotEmpty(t, body)
	assert.Len(t, sig, 64)
}

func TestVerify_AnySingleFlippedByteIsInvalid(t *testing.T) {
	iss, err := New(secret)
	require.NoError(t, err)
	tok, _, err := iss.Issue("ref-abcdefghijklmnop", 1234, "Recipient111")
	require.NoError(t, err)

	for i := 0; i < len(tok); i++ {
		for bit := 0; bit < 8; bit++ {
			b := []byte(tok)
			b[i] ^= 1 << bit
			_, err := iss.Verify(string(b))
			require.Error(t, err, "pos %d bit %d", i, bit)
			require.True(t, perr.IsReason(err, ReasonTokenInvalid))
		}
	}
}

func TestVerify_UniformFailure(t *testing.T) {
	iss, err := New(secret)
	require.NoError(t, err)
	other, err := New(bytes.Repeat([]byte("z"), MinSecretLen))
	require.NoError(t, err)
	foreign, _, err := other.Issue("ref", 1, "r")
	require.NoError(t, err)

	var msgs []string
	for _, tok := range []string{"", ".", "abc", "abc.", ".abc", "!!!.00", foreign} {
		_, err := iss.Verify(tok)
		require.Error(t, err, tok)
		assert.Equal(t, perr.ErrorCodeUnauthorized, perr.CodeOf(err))
		msgs = append(msgs, err.Error())
	}
	for _, m := range msgs {
		assert.Equal(t, msgs[0], m)
	}
}

func TestVerify_MaxAge(t *testing.T) {
	now := time.Unix(1_760_000_000, 0)
	clock := now
	iss, err := New(secret, WithMaxAge(time.Hour), WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	tok, _, err := iss.Issue("ref", 1, "r")
	require.NoError(t, err)

	clock = now.Add(59 * time.Minute)
	_, err = iss.Verify(tok)
	assert.NoError(t, err)

	clock = now.Add(61 * time.Minute)
	_, err = iss.Verify(tok)
	assert.True(t, perr.IsReason(err, ReasonTokenInvalid))
}

func TestNew_SecretRules(t *testing.T) {
	_, err := New([]byte("short"))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	s, err := GenerateSecret()
	require.NoError(t, err)
	assert.Len(t, s, MinSecretLen)

	iss, err := New(s)
	require.NoError(t, err)
	s[0] ^= 0xFF // caller mutation must not affect the issuer
	tok, _, err := iss.Issue("ref", 1, "r")
	require.NoError(t, err)
	_, err = iss.Verify(tok)
	assert.NoError(t, err)
}

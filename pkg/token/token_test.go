package token_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopgrid/shopgrid/pkg/token"
)

type claims struct {
	UserID string `json:"uid"`
	Exp    int64  `json:"exp"`
}

const secret = "test-secret"

func TestSignAndParse(t *testing.T) {
	t.Parallel()

	in := claims{UserID: "u-42", Exp: 1767225600}

	tok, err := token.Sign(in, secret)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(tok, ".")+1, "two dot-separated segments")

	out, err := token.Parse[claims](tok, secret)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	tok, err := token.Sign(claims{UserID: "u-42"}, secret)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		_, err := token.Parse[claims](tok, "other-secret")
		assert.ErrorIs(t, err, token.ErrSignatureInvalid)
	})

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()
		parts := strings.SplitN(tok, ".", 2)
		forged, err := token.Sign(claims{UserID: "u-666"}, "attacker")
		require.NoError(t, err)
		_, err = token.Parse[claims](strings.SplitN(forged, ".", 2)[0]+"."+parts[1], secret)
		assert.ErrorIs(t, err, token.ErrSignatureInvalid)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		for _, bad := range []string{"", "nodots", "a.b.c", "!!.!!"} {
			_, err := token.Parse[claims](bad, secret)
			assert.ErrorIs(t, err, token.ErrInvalidToken, "input %q", bad)
		}
	})
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	id := Identity{ExternalID: "google-oauth2|123", Email: "ana@example.com", Name: "Ana", PictureURL: "https://pics/ana.png"}

	tok, err := GenerateToken(id, secret, time.Hour)
	require.NoError(t, err)

	got, err := ParseIdentity(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParseIdentity_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken(Identity{ExternalID: "u1"}, secret, -1*time.Second)
	require.NoError(t, err)

	_, err = ParseIdentity(tok, secret)
	if err != common.ErrTokenExpired {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestParseIdentity_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(Identity{ExternalID: "u2"}, []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = ParseIdentity(tok, []byte("wrong-secret"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestParseIdentity_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := ParseIdentity("not.a.jwt", []byte("k"))
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestParseIdentity_MissingSubject(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := GenerateToken(Identity{}, secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseIdentity(tok, secret)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestParseIdentity_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u3", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = ParseIdentity(tok, secret)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tok, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	tok, err = BearerToken("bearer   xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	for _, h := range []string{"", "Bearer", "Basic abc", "Bearer a b"} {
		_, err := BearerToken(h)
		assert.ErrorIs(t, err, common.ErrInvalidToken, h)
	}
}

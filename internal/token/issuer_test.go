package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestNewIssuerRequiresKey(t *testing.T) {
	_, err := NewIssuer(nil)
	require.ErrorIs(t, err, ErrMisconfigured)

	_, err = NewIssuer([]byte{})
	require.ErrorIs(t, err, ErrMisconfigured)
}

func TestIssueClaimShape(t *testing.T) {
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC)}
	iss, err := NewIssuer([]byte("k"), WithClock(c.now))
	require.NoError(t, err)

	id := uuid.New()
	signed, err := iss.Issue(id, "alice")
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)

	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"alg":"HS256","typ":"JWT"}`, string(header))

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))

	assert.Len(t, raw, 4)
	assert.Equal(t, id.String(), raw["sub"])
	assert.Equal(t, "alice", raw["username"])
	iat := int64(raw["iat"].(float64))
	exp := int64(raw["exp"].(float64))
	assert.Equal(t, int64(86400), exp-iat)
	assert.Equal(t, c.t.Unix(), iat)
}

func TestParseRoundTrip(t *testing.T) {
	c := &clock{t: time.Now()}
	iss, err := NewIssuer([]byte("k"), WithClock(c.now))
	require.NoError(t, err)

	id := uuid.New()
	signed, err := iss.Issue(id, "alice")
	require.NoError(t, err)

	claims, err := iss.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.Subject)
	assert.Equal(t, "alice", claims.Username)
}

func TestParseRejectsExpired(t *testing.T) {
	c := &clock{t: time.Now()}
	iss, err := NewIssuer([]byte("k"), WithClock(c.now))
	require.NoError(t, err)

	signed, err := iss.Issue(uuid.New(), "alice")
	require.NoError(t, err)

	c.t = c.t.Add(Validity - time.Minute)
	_, err = iss.Parse(signed)
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Minute)
	_, err = iss.Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignKeyAndAlgorithm(t *testing.T) {
	iss, err := NewIssuer([]byte("k"))
	require.NoError(t, err)
	other, err := NewIssuer([]byte("other"))
	require.NoError(t, err)

	signed, err := other.Issue(uuid.New(), "alice")
	require.NoError(t, err)
	_, err = iss.Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	now := time.Now()
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Parse(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNonUUIDSubject(t *testing.T) {
	iss, err := NewIssuer([]byte("k"))
	require.NoError(t, err)

	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = iss.Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

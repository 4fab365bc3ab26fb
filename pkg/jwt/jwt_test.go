package jwt_test

import (
	"testing"
	"time"

	"github.com/raffleclub/backend/pkg/jwt"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	engine := jwt.NewEngine[string]("secret", time.Minute)
	token, err := engine.Generate("sub", "abc")
	require.NoError(t, err)

	obj, err := engine.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "abc", obj)
}

func TestJWTExpiration(t *testing.T) {
	engine := jwt.NewEngine[string]("secret", -time.Minute)
	token, err := engine.Generate("sub", "abc")
	require.NoError(t, err)

	_, err = engine.Verify(token)
	require.Error(t, err)
}

func TestJWTWrongSecret(t *testing.T) {
	engine := jwt.NewEngine[string]("secret", time.Minute)
	token, err := engine.Generate("sub", "abc")
	require.NoError(t, err)

	other := jwt.NewEngine[string]("not secret", time.Minute)
	_, err = other.Verify(token)
	require.Error(t, err)
}

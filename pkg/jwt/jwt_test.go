package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	tok, err := Generate("s3cret", "logistica", Claims{UserID: "u1", Role: "admin", UpstreamToken: "up"}, time.Minute)
	require.NoError(t, err)

	c, err := Parse("s3cret", "logistica", tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "admin", c.Role)
	assert.Equal(t, "up", c.UpstreamToken)
}

func TestParse_Rechazos(t *testing.T) {
	tok, err := Generate("s3cret", "logistica", Claims{UserID: "u1", Role: "operador"}, time.Minute)
	require.NoError(t, err)
	expired, err := Generate("s3cret", "logistica", Claims{UserID: "u1"}, -time.Minute)
	require.NoError(t, err)
	noUser, err := Generate("s3cret", "logistica", Claims{Role: "admin"}, time.Minute)
	require.NoError(t, err)

	_, err = Parse("otro", "logistica", tok)
	assert.Error(t, err, "firma incorrecta")
	_, err = Parse("s3cret", "otro-emisor", tok)
	assert.Error(t, err, "emisor distinto")
	_, err = Parse("s3cret", "logistica", expired)
	assert.Error(t, err, "expirado")
	_, err = Parse("s3cret", "logistica", noUser)
	assert.Error(t, err, "sin user_id")
	_, err = Parse("", "logistica", tok)
	assert.Error(t, err)
}

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"
)

func TestStaticCredentialsFn(t *testing.T) {
	fn := StaticCredentialsFn("user", "pass")

	creds, err := fn(valkey.AuthCredentialsContext{})

	require.NoError(t, err)
	assert.Equal(t, "user", creds.Username)
	assert.Equal(t, "pass", creds.Password)
}

func TestStaticCredentialsFn_Empty(t *testing.T) {
	fn := StaticCredentialsFn("", "")

	creds, err := fn(valkey.AuthCredentialsContext{})

	require.NoError(t, err)
	assert.Empty(t, creds.Username)
	assert.Empty(t, creds.Password)
}

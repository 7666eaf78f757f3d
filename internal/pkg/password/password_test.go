package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("mypassword1")
	require.NoError(t, err)
	assert.NotEqual(t, "mypassword1", hash)

	assert.True(t, Verify("mypassword1", hash))
	assert.False(t, Verify("mypassword2", hash))
}

func TestHashToken(t *testing.T) {
	a := HashToken("some-refresh-token")
	b := HashToken("some-refresh-token")
	c := HashToken("another-token")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // sha256 hex
}

func TestValidate(t *testing.T) {
	assert.False(t, Validate("short"))
	assert.False(t, Validate("1234567"))
	assert.True(t, Validate("12345678"))
}

package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/vanstock-api/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse_ConRolYSesion(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "user-1", "admin", "sess-1", "vanstock-test", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Value)
	assert.Equal(t, "sess-1", tok.SessionID)

	claims, err := pkgjwt.Parse(testSecret, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "sess-1", claims.ID)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "user-1", "admin", "sess-1", "vanstock-test", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok.Value)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "user-1", "user", "sess-1", "vanstock-test", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok.Value)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "user-1", "user", "sess-1", "vanstock-test", 60)
	assert.Error(t, err)
}

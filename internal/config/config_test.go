package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet_Fallback(t *testing.T) {
	t.Setenv("DISPATCH_TEST_KEY", "")
	assert.Equal(t, "fallback", Get("DISPATCH_TEST_KEY", "fallback"))

	t.Setenv("DISPATCH_TEST_KEY", "set")
	assert.Equal(t, "set", Get("DISPATCH_TEST_KEY", "fallback"))
}

func TestLoad_DefaultsAndLists(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "Development")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_JWT_SECRET", "")

	c := Load()

	assert.Equal(t, "8080", c.Port)
	assert.True(t, c.Development())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.AllowedOrigins)

	err := c.RequireServer()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "DATABASE_URL")
		assert.Contains(t, err.Error(), "APP_JWT_SECRET")
	}
}

package handlers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/http/handlers"
)

func TestHealth(t *testing.T) {
	a := newTestApp(t, handlers.Options{})
	status, body := a.call(t, "GET", "/health", "", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "storefront is running", body["message"])
}

func TestRegisterMeLogout(t *testing.T) {
	a := newTestApp(t, handlers.Options{})

	status, _ := a.call(t, "GET", "/api/me", "", nil)
	assert.Equal(t, 401, status)

	tok := a.register(t, "Reader@Example.com")
	status, body := a.call(t, "GET", "/api/me", tok, nil)
	require.Equal(t, 200, status)
	user := body["user"].(map[string]any)
	assert.Equal(t, "reader@example.com", user["email"])
	assert.Equal(t, "customer", user["role"])
	assert.NotContains(t, user, "password_hash")

	status, body = a.call(t, "POST", "/api/auth/register", "", map[string]string{
		"email": "reader@example.com", "password": "password123",
	})
	assert.Equal(t, 409, status)
	assert.Equal(t, "Duplicate value", body["error"])

	status, _ = a.call(t, "POST", "/api/auth/logout", tok, nil)
	assert.Equal(t, 204, status)
	status, _ = a.call(t, "GET", "/api/me", tok, nil)
	assert.Equal(t, 401, status)
}

func TestRegisterValidationFields(t *testing.T) {
	a := newTestApp(t, handlers.Options{})
	status, body := a.call(t, "POST", "/api/auth/register", "", map[string]string{"email": "nope", "password": "x"})
	require.Equal(t, 400, status)
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestLoginLogging(t *testing.T) {
	a := newTestApp(t, handlers.Options{})
	a.register(t, "alice@example.com")

	login := func(pass string) (int, []logEntry) {
		var status int
		logs := captureLogs(t, func() {
			status, _ = a.call(t, "POST", "/api/auth/login", "", map[string]string{
				"email": "alice@example.com", "password": pass,
			})
		})
		return status, logs
	}

	status, logs := login("wrong-password")
	assert.Equal(t, 401, status)
	e, ok := findLog(logs, "auth.login.fail")
	require.True(t, ok, "auth.login.fail not logged")
	assert.Equal(t, "warn", e.Level)
	assert.Equal(t, "alice@example.com", e.Fields["email"])

	status, logs = login("password123")
	assert.Equal(t, 200, status)
	e, ok = findLog(logs, "auth.login.success")
	require.True(t, ok, "auth.login.success not logged")
	assert.Equal(t, "audit", e.Level)
}

func TestLoginRateLimited(t *testing.T) {
	a := newTestApp(t, handlers.Options{LoginMax: 3})
	for i := 0; i < 3; i++ {
		status, _ := a.call(t, "POST", "/api/auth/login", "", map[string]string{"email": "x@example.com", "password": "whatever1"})
		require.Equal(t, 401, status, "attempt %d", i)
	}
	var status int
	logs := captureLogs(t, func() {
		status, _ = a.call(t, "POST", "/api/auth/login", "", map[string]string{"email": "x@example.com", "password": "whatever1"})
	})
	assert.Equal(t, 429, status)
	_, ok := findLog(logs, "rate.login.hit")
	assert.True(t, ok)
}

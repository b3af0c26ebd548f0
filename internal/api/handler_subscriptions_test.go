package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutSubscription_InvalidBody(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPut, "/api/subscriptions", &env.f.ClientUser1, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPut, "/api/subscriptions", nil, map[string]any{"endpoint": "https://push.example/a"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubscriptions_Lifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	f := env.f
	endpoint := "https://push.example/send/abc"
	path := "/api/subscriptions?endpoint=" + endpoint

	w := env.do(http.MethodPut, "/api/subscriptions", &f.ClientUser1, map[string]any{
		"endpoint": endpoint,
		"p256dh":   "key",
		"auth":     "secret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodGet, path, &f.ClientUser1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), endpoint)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, path, &f.ClientUser2, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/subscriptions", &f.ClientUser1, nil).Code)

	w = env.do(http.MethodDelete, "/api/subscriptions", &f.ClientUser1, map[string]any{"endpoint": endpoint})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, path, &f.ClientUser1, nil).Code)
}

func TestPutSubscription_OtherUsersEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	f := env.f
	endpoint := "https://push.example/send/owned"
	body := map[string]any{"endpoint": endpoint, "p256dh": "key", "auth": "secret"}

	w := env.do(http.MethodPut, "/api/subscriptions", &f.ClientUser1, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodPut, "/api/subscriptions", &f.ClientUser2, map[string]any{
		"endpoint": endpoint, "p256dh": "other", "auth": "other",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	path := "/api/subscriptions?endpoint=" + endpoint
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, path, &f.ClientUser1, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, path, &f.ClientUser2, nil).Code)

	w = env.do(http.MethodPut, "/api/subscriptions", &f.ClientUser1, body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRawQueryParam(t *testing.T) {
	encoded := url.QueryEscape("https://push.example/a?b=c")
	raw, ok := rawQueryParam("x=1&endpoint="+encoded, "endpoint")
	assert.True(t, ok)
	assert.Equal(t, encoded, raw)

	_, ok = rawQueryParam("x=1", "endpoint")
	assert.False(t, ok)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	env := newTestEnv(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/api/vapid_public_key", nil, nil).Code)

	env = newTestEnv(t, func(o *Options) { o.WebPush = &webpush.Options{VAPIDPublicKey: "pub"} })
	w := env.do(http.MethodGet, "/api/vapid_public_key", nil, nil)
	assert.JSONEq(t, `{"public_key":"pub"}`, w.Body.String())
}

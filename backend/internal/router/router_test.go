package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/itchan-dev/boardstore/backend/internal/setup"
	"github.com/itchan-dev/boardstore/shared/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{Public: config.Public{
		StorageDriver:      config.DriverMemory,
		ThreadsPerPage:     10,
		RepliesPreview:     3,
		CorsAllowedOrigins: []string{"*"},
	}}
	deps, err := setup.SetupDependencies(context.Background(), cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(New(deps))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, target, contentType, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestProbesAndHeaders(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
	assert.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "off", resp.Header.Get("X-DNS-Prefetch-Control"))
	assert.Equal(t, "same-origin", resp.Header.Get("Referrer-Policy"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Empty(t, resp.Header.Get("Strict-Transport-Security"))

	resp, body = do(t, http.MethodGet, srv.URL+"/ready", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not Found", strings.TrimSpace(body))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/threads/b", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Less(t, resp.StatusCode, 300)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	do(t, http.MethodGet, srv.URL+"/api/threads/metrics-board", "", "")

	resp, body := do(t, http.MethodGet, srv.URL+"/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "boardstore_http_requests_total")
	assert.Contains(t, body, `path="/api/threads/{board}"`)
}

func TestBoardLifecycle(t *testing.T) {
	srv := newTestServer(t)
	threadsURL := srv.URL + "/api/threads/general"
	repliesURL := srv.URL + "/api/replies/general"

	// create a thread
	resp, body := do(t, http.MethodPost, threadsURL, "application/json", `{"text":"first post","delete_password":"tpw"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var thread map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &thread))
	threadId := thread["_id"].(string)
	assert.Equal(t, "first post", thread["text"])
	assert.Equal(t, "tpw", thread["delete_password"])
	assert.Equal(t, false, thread["reported"])
	assert.Equal(t, thread["created_on"], thread["bumped_on"])

	// reply with a form body
	form := url.Values{"thread_id": {threadId}, "text": {"a reply"}, "delete_password": {"rpw"}}
	resp, body = do(t, http.MethodPost, repliesURL, "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reply map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &reply))
	replyId := reply["_id"].(string)

	// the board listing is redacted
	_, body = do(t, http.MethodGet, threadsURL, "", "")
	var listing []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &listing))
	require.Len(t, listing, 1)
	assert.Equal(t, reply["created_on"], listing[0]["bumped_on"])
	assert.NotContains(t, listing[0], "delete_password")
	assert.NotContains(t, listing[0], "reported")

	// reports always acknowledge
	_, body = do(t, http.MethodPut, threadsURL, "application/json", `{"thread_id":"`+threadId+`"}`)
	assert.Equal(t, "reported", body)
	_, body = do(t, http.MethodPut, repliesURL, "application/json", `{"thread_id":"`+threadId+`","reply_id":"`+replyId+`"}`)
	assert.Equal(t, "reported", body)

	// redact the reply
	_, body = do(t, http.MethodDelete, repliesURL, "application/json", `{"thread_id":"`+threadId+`","reply_id":"`+replyId+`","delete_password":"bad"}`)
	assert.Equal(t, "incorrect password", body)
	_, body = do(t, http.MethodDelete, repliesURL, "application/json", `{"thread_id":"`+threadId+`","reply_id":"`+replyId+`","delete_password":"rpw"}`)
	assert.Equal(t, "success", body)

	_, body = do(t, http.MethodGet, repliesURL+"?thread_id="+threadId, "", "")
	var full map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &full))
	replies := full["replies"].([]any)
	require.Len(t, replies, 1)
	assert.Equal(t, "[deleted]", replies[0].(map[string]any)["text"])
	assert.Equal(t, replyId, replies[0].(map[string]any)["_id"])

	// delete the thread with a urlencoded DELETE body
	form = url.Values{"thread_id": {threadId}, "delete_password": {"tpw"}}
	_, body = do(t, http.MethodDelete, threadsURL, "application/x-www-form-urlencoded", form.Encode())
	assert.Equal(t, "success", body)

	_, body = do(t, http.MethodGet, repliesURL+"?thread_id="+threadId, "", "")
	assert.Equal(t, "{}", body)
}

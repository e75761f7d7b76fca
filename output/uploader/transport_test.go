package uploader

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/util"
	"github.com/relex/gotils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest(token string, messages ...string) base.SendLogRequest {
	traces := make([]base.Trace, len(messages))
	for i, msg := range messages {
		traces[i] = base.Trace{Topic: "t", Level: "LOG", Message: msg}
	}
	return base.LogRequest{App: base.AppInfo{AppID: "t", AppVersion: "1"}, Traces: traces}.WithToken(token)
}

func TestHTTPTransportPost(t *testing.T) {
	var gotHeader http.Header
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	transport := NewHTTPTransport(logger.Root(), HTTPTransportConfig{
		URL:           server.URL,
		CustomHeaders: map[string]string{"X-Client-Id": "abc"},
	})
	header, err := transport.Post(context.Background(), testRequest("secret", "hello"))
	require.NoError(t, err)
	assert.Equal(t, "3", header.Get("Retry-After"))

	assert.Equal(t, "Bearer secret", gotHeader.Get("Authorization"))
	assert.Equal(t, "application/json; charset=UTF-8", gotHeader.Get("Content-Type"))
	assert.Equal(t, "abc", gotHeader.Get("X-Client-Id"))
	assert.Equal(t, `{"accessToken":"secret","app":{"appId":"t","appVersion":"1"},"traces":[{"topic":"t","level":"LOG","message":"hello"}]}`, gotBody)
}

func TestHTTPTransportCompress(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Content-Encoding"))
		reader, err := gzip.NewReader(r.Body)
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(reader)
		gotBody = string(data)
	}))
	defer server.Close()

	transport := NewHTTPTransport(logger.Root(), HTTPTransportConfig{URL: server.URL, Compress: true})
	_, err := transport.Post(context.Background(), testRequest("secret", "hello"))
	require.NoError(t, err)
	expected, _ := util.MarshalJSON(testRequest("secret", "hello"))
	assert.Equal(t, string(expected), gotBody)
}

func TestHTTPTransportErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "10")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer server.Close()

	transport := NewHTTPTransport(logger.Root(), HTTPTransportConfig{URL: server.URL})
	_, err := transport.Post(context.Background(), testRequest("secret", "hello"))

	var statusErr *base.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 429, statusErr.StatusCode)
	assert.Equal(t, "slow down", statusErr.Body)
	assert.Equal(t, "10", statusErr.Header.Get("Retry-After"))
}

func TestHTTPTransportNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	transport := NewHTTPTransport(logger.Root(), HTTPTransportConfig{URL: url})
	_, err := transport.Post(context.Background(), testRequest("secret", "hello"))
	assert.Error(t, err)
	assert.True(t, util.IsNetworkError(err))
	assert.Equal(t, 0, base.StatusOf(err))
}

package uploader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/defs"
	"github.com/relex/client-logger/util"
	"github.com/relex/gotils/logger"
)

// maxErrorBodyLength limits how much of an error response is kept in StatusError
const maxErrorBodyLength = 1024

// Transport performs one delivery attempt of a request
//
// Response headers are returned on success; on a non-2xx response the error is a *base.StatusError carrying them.
type Transport interface {
	Post(ctx context.Context, request base.SendLogRequest) (http.Header, error)
}

// HTTPTransportConfig configures HTTPTransport
type HTTPTransportConfig struct {
	URL           string
	CustomHeaders map[string]string
	Compress      bool // gzip request bodies
	Timeout       time.Duration
}

// HTTPTransport POSTs requests as JSON with the access token as bearer
type HTTPTransport struct {
	logger logger.Logger
	config HTTPTransportConfig
	client *http.Client
}

// NewHTTPTransport creates HTTPTransport
func NewHTTPTransport(parentLogger logger.Logger, config HTTPTransportConfig) *HTTPTransport {
	if config.Timeout <= 0 {
		config.Timeout = defs.UploaderHTTPTimeout
	}
	return &HTTPTransport{
		logger: parentLogger.WithField(defs.LabelComponent, "HTTPTransport"),
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

func (transport *HTTPTransport) Post(ctx context.Context, request base.SendLogRequest) (http.Header, error) {
	body, err := transport.encodeBody(request)
	if err != nil {
		return nil, err
	}

	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, transport.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for name, value := range transport.config.CustomHeaders {
		rq.Header.Set(name, value)
	}
	rq.Header.Set("Authorization", "Bearer "+request.AccessToken)
	rq.Header.Set("Content-Type", "application/json; charset=UTF-8")
	if transport.config.Compress {
		rq.Header.Set("Content-Encoding", "gzip")
	}

	resp, err := transport.client.Do(rq)
	if err != nil {
		return nil, fmt.Errorf("send logs error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, rerr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
		if rerr != nil {
			transport.logger.Debugf("couldn't read response body: %s", rerr.Error())
		}
		return resp.Header, &base.StatusError{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       string(respBody),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body) // let the connection be reused
	return resp.Header, nil
}

func (transport *HTTPTransport) encodeBody(request base.SendLogRequest) ([]byte, error) {
	data, err := util.MarshalJSON(request)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize request: %w", err)
	}
	if !transport.config.Compress {
		return data, nil
	}

	compressed := &bytes.Buffer{}
	gzipper, err := gzip.NewWriterLevel(compressed, gzip.BestSpeed)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if _, err := gzipper.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress request: %w", err)
	}
	if err := gzipper.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress request: %w", err)
	}
	return compressed.Bytes(), nil
}

package run

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/output/uploader"
	"github.com/relex/client-logger/storage/sfile"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingServer struct {
	*httptest.Server
	mutex    sync.Mutex
	requests []base.SendLogRequest
	status   int
}

func newRecordingServer(status int) *recordingServer {
	rs := &recordingServer{status: status}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var request base.SendLogRequest
		if err := json.Unmarshal(data, &request); err == nil {
			rs.mutex.Lock()
			rs.requests = append(rs.requests, request)
			rs.mutex.Unlock()
		}
		w.WriteHeader(rs.status)
	}))
	return rs
}

func (rs *recordingServer) Requests() []base.SendLogRequest {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()
	return append([]base.SendLogRequest(nil), rs.requests...)
}

func writeConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	config, err := LoadConfigFile(writeConfig(t, `
logger:
  accessToken: token
  url: http://localhost/logs
  appName: cli
  appVersion: "1"
  storage:
    type: memory
lineLevel: warn
`))
	require.NoError(t, err)
	assert.Equal(t, "cli", config.Logger.AppName)
	assert.True(t, config.Logger.Storage.IsSet())
	level, err := config.ParseLineLevel()
	require.NoError(t, err)
	assert.Equal(t, base.LevelWarn, level)
}

func TestLoadConfigFileErrors(t *testing.T) {
	_, err := LoadConfigFile(writeConfig(t, `
logger:
  appName: cli
  appVersion: "1"
`))
	assert.EqualError(t, err, "logger.url: lacking necessary config option to set up server logging")

	_, err = LoadConfigFile(writeConfig(t, `
logger:
  url: http://localhost/logs
  appVersion: "1"
lineLevel: loud
`))
	assert.EqualError(t, err, "lineLevel: invalid log level: 'loud'")

	_, err = LoadConfigFile(writeConfig(t, `
logger:
  url: http://localhost/logs
  appVersion: "1"
  storage:
    type: file
`))
	assert.EqualError(t, err, "logger.storage: .path is unspecified")

	_, err = LoadConfigFile(writeConfig(t, `
logger:
  unknownField: 1
`))
	assert.Error(t, err)
}

func TestShipLinesUntilEOF(t *testing.T) {
	server := newRecordingServer(http.StatusOK)
	defer server.Close()

	config := &Config{LineLevel: "error"}
	config.Logger.AccessToken = "token"
	config.Logger.URL = server.URL
	config.Logger.AppName = "cli"
	config.Logger.AppVersion = "1"

	factory := base.NewMetricFactory("test_", nil, nil, nil)
	input := strings.NewReader("first line\n\nsecond line\r\n")
	require.NoError(t, Ship(config, input, factory, channels.NewSignalAwaitable()))

	requests := server.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "token", requests[0].AccessToken)
	require.Len(t, requests[0].Traces, 2)
	assert.Equal(t, "ERROR", requests[0].Traces[0].Level)
	assert.Contains(t, requests[0].Traces[0].Message, `"message":"[cli] first line"`)
	assert.Contains(t, requests[0].Traces[1].Message, `"message":"[cli] second line"`)

	dump, err := factory.DumpMetrics(false)
	require.NoError(t, err)
	assert.Contains(t, dump, `test_shipper_lines_total{status="shipped"} 2`)
	assert.Contains(t, dump, `test_shipper_lines_total{status="skipped"} 1`)
}

func TestShipStopsOnRequest(t *testing.T) {
	server := newRecordingServer(http.StatusOK)
	defer server.Close()

	config := &Config{}
	config.Logger.URL = server.URL
	config.Logger.AppVersion = "1"

	reader, writer := io.Pipe()
	defer writer.Close()
	stopRequest := channels.NewSignalAwaitable()
	stopRequest.Signal()
	assert.NoError(t, Ship(config, reader, base.NewMetricFactory("test_", nil, nil, nil), stopRequest))
	assert.Empty(t, server.Requests())
}

func saveRequests(t *testing.T, dir string, count int) {
	store, err := sfile.NewFileStore(logger.Root(), dir, "")
	require.NoError(t, err)
	defer store.Close()
	saved := uploader.NewSavedRequests(logger.Root(), store)
	for i := 0; i < count; i++ {
		require.NoError(t, saved.Append(base.LogRequest{
			App:    base.AppInfo{AppID: "cli", AppVersion: "1"},
			Traces: []base.Trace{{Topic: "cli", Level: "INFO", Message: `{"message":"saved"}`}},
		}))
	}
}

func loadSaved(t *testing.T, dir string) []base.LogRequest {
	store, err := sfile.NewFileStore(logger.Root(), dir, "")
	require.NoError(t, err)
	defer store.Close()
	return uploader.NewSavedRequests(logger.Root(), store).Load()
}

func replayConfig(t *testing.T, url string, dir string) *Config {
	config, err := LoadConfigFile(writeConfig(t, `
logger:
  accessToken: replay-token
  url: `+url+`
  appName: cli
  appVersion: "1"
  storage:
    type: file
    path: `+dir+`
`))
	require.NoError(t, err)
	return config
}

func TestReplaySavedRequests(t *testing.T) {
	server := newRecordingServer(http.StatusOK)
	defer server.Close()
	dir := filepath.Join(t.TempDir(), "store")
	saveRequests(t, dir, 2)

	delivered, failed, err := Replay(replayConfig(t, server.URL, dir), base.NewMetricFactory("test_", nil, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 2, delivered)
	assert.Equal(t, 0, failed)

	requests := server.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "replay-token", requests[0].AccessToken)
	assert.Empty(t, loadSaved(t, dir))
}

func TestReplayFailureSavesBack(t *testing.T) {
	server := newRecordingServer(http.StatusServiceUnavailable)
	defer server.Close()
	dir := filepath.Join(t.TempDir(), "store")
	saveRequests(t, dir, 2)

	delivered, failed, err := Replay(replayConfig(t, server.URL, dir), base.NewMetricFactory("test_", nil, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, delivered)
	assert.Equal(t, 2, failed)
	assert.Len(t, loadSaved(t, dir), 2)
}

package bconfig

import (
	"errors"
	"testing"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/defs"
	"github.com/relex/client-logger/util"
	"github.com/relex/gotils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStoreConfig struct {
	Header `yaml:",inline"`
	Path   string `yaml:"path"`
}

func (cfg *testStoreConfig) NewStore(parentLogger logger.Logger) (base.RequestStore, error) {
	return nil, errors.New("not implemented")
}

func (cfg *testStoreConfig) VerifyConfig() error {
	if cfg.Path == "" {
		return errors.New("missing path")
	}
	return nil
}

func init() {
	RegisterConfigConstructors(RequestStoreConfigCreatorTable{
		"test": func() RequestStoreConfig { return &testStoreConfig{} },
	})
}

func TestLoggerConfigLoad(t *testing.T) {
	var cfg LoggerConfig
	require.NoError(t, util.UnmarshalYamlString(`
accessToken: secret
url: http://localhost/logs
appName: myapp
appVersion: 1.2.3
origin:
  name: parent
  version: "2"
  id: abc
logLevel: warn
uploadDebounceTime: 2s
maxLogSize: 10KB
customHeaders:
  X-Client: test
serverExclude:
  - "*password*"
storage:
  type: test
  path: /tmp/x
`, &cfg))

	assert.Equal(t, "secret", cfg.AccessToken)
	assert.Equal(t, base.AppInfo{AppID: "myapp", AppVersion: "1.2.3"}, cfg.AppInfo())
	assert.Equal(t, base.OriginApp{Name: "parent", Version: "2", ID: "abc"}, cfg.Origin)
	assert.Equal(t, 2*time.Second, cfg.DebounceOrDefault())
	assert.Equal(t, 10240, cfg.MaxLogSizeOrDefault())
	assert.True(t, cfg.ServerLoggingEnabled())
	assert.True(t, cfg.Storage.IsSet())
	assert.Equal(t, "test", cfg.Storage.Value.GetType())
	assert.NoError(t, cfg.VerifyConfig())

	globs, err := cfg.CompileServerExclude()
	require.NoError(t, err)
	assert.True(t, globs[0].Match("my password is"))
}

func TestLoggerConfigDefaults(t *testing.T) {
	cfg := LoggerConfig{URL: "http://x", AppVersion: "1"}
	assert.Equal(t, defs.DefaultUploadDebounce, cfg.DebounceOrDefault())
	assert.Equal(t, defs.MaxLogSize, cfg.MaxLogSizeOrDefault())
	assert.False(t, cfg.Storage.IsSet())
	assert.NoError(t, cfg.VerifyConfig())
}

func TestLoggerConfigVerify(t *testing.T) {
	var cfgErr *ConfigError

	err := (&LoggerConfig{AppVersion: "1"}).VerifyConfig()
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "url", cfgErr.Field)

	err = (&LoggerConfig{URL: "http://x"}).VerifyConfig()
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "appVersion", cfgErr.Field)

	disabled := false
	assert.NoError(t, (&LoggerConfig{InitializeServerLogging: &disabled}).VerifyConfig())

	err = (&LoggerConfig{URL: "http://x", AppVersion: "1", ServerExclude: []string{"[a"}}).VerifyConfig()
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "serverExclude[0]", cfgErr.Field)

	err = (&LoggerConfig{URL: "http://x", AppVersion: "1", MaxLogSize: 100 * datasize.B}).VerifyConfig()
	assert.ErrorContains(t, err, ".maxLogSize: too small")
}

func TestLoggerConfigBadStorage(t *testing.T) {
	var cfg LoggerConfig
	err := util.UnmarshalYamlString(`
url: http://x
appVersion: "1"
storage:
  type: cloud
`, &cfg)
	assert.ErrorContains(t, err, "unsupported 'cloud', expect one of: test")

	err = util.UnmarshalYamlString(`
url: http://x
appVersion: "1"
storage:
  type: test
  size: 3
`, &cfg)
	assert.Error(t, err)

	require.NoError(t, util.UnmarshalYamlString(`
url: http://x
appVersion: "1"
storage:
  type: test
`, &cfg))
	assert.ErrorContains(t, cfg.VerifyConfig(), ".storage: missing path")
}

// Package sfile provides a RequestStore keeping one file per key in a local directory
package sfile

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/pkg/xattr"
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/base/bconfig"
	"github.com/relex/client-logger/defs"
	"github.com/relex/client-logger/util"
	"github.com/relex/gotils/logger"
)

// xattrStoreLabel marks directories created as stores, to tell them apart from unrelated dirs in e.g. cleanup scripts
const xattrStoreLabel = "user.clientloggerStore"

// Config for FileStore
type Config struct {
	bconfig.Header `yaml:",inline"`
	Path           string `yaml:"path"`
	Label          string `yaml:"label"` // optional; set as extended attribute on the directory
}

// NewStore creates a FileStore
func (cfg *Config) NewStore(parentLogger logger.Logger) (base.RequestStore, error) {
	return NewFileStore(parentLogger, cfg.Path, cfg.Label)
}

// VerifyConfig verifies FileStore config
func (cfg *Config) VerifyConfig() error {
	if cfg.Path == "" {
		return errors.New(".path is unspecified")
	}
	return nil
}

// FileStore saves each key as a file in the directory, replaced atomically on every Set
type FileStore struct {
	logger logger.Logger
	path   string
	dir    *os.File
	mutex  sync.Mutex
}

// NewFileStore opens or creates the store directory
//
// Failure to set the label is only logged, since not all filesystems support extended attributes
func NewFileStore(parentLogger logger.Logger, path string, label string) (*FileStore, error) {
	storeLogger := parentLogger.WithFields(logger.Fields{
		defs.LabelComponent: "FileStore",
		defs.LabelName:      path,
	})
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}
	if label == "" {
		label = path
	}
	if xerr := xattr.Set(path, xattrStoreLabel, []byte(label)); xerr != nil {
		storeLogger.Warnf("error labelling store dir: %s", xerr.Error())
	}
	dir, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store dir: %w", err)
	}
	return &FileStore{
		logger: storeLogger,
		path:   path,
		dir:    dir,
	}, nil
}

// Label returns the label of the store directory, if the filesystem supports it
func (store *FileStore) Label() (string, error) {
	label, err := xattr.Get(store.path, xattrStoreLabel)
	if err != nil {
		return "", err
	}
	return string(label), nil
}

func (store *FileStore) Get(key string) (string, bool, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	data, err := util.ReadFileAt(store.dir, keyToFilename(key))
	if err != nil {
		if util.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read '%s': %w", key, err)
	}
	return string(data), true, nil
}

func (store *FileStore) Set(key string, value string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if err := util.WriteFileAt(store.dir, keyToFilename(key), []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", key, err)
	}
	return nil
}

func (store *FileStore) Remove(key string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if err := util.UnlinkFileAt(store.dir, keyToFilename(key)); err != nil && !util.IsNotExist(err) {
		return fmt.Errorf("failed to remove '%s': %w", key, err)
	}
	return nil
}

func (store *FileStore) Close() error {
	return store.dir.Close()
}

func keyToFilename(key string) string {
	result := make([]byte, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch c {
		case 0, '/':
			c = '_'
		}
		result[i] = c
	}
	return string(result) + ".json"
}

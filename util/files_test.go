package util

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFiles(t *testing.T) {
	rootPath := t.TempDir()
	t.Log("TestFiles: " + rootPath)

	assert.Nil(t, os.WriteFile(path.Join(rootPath, "test1"), []byte("Hello1"), 0644))

	dir, err := os.Open(rootPath)
	if !assert.Nil(t, err) {
		return
	}
	defer dir.Close()

	t.Run("read file at", func(tt *testing.T) {
		content, err := ReadFileAt(dir, "test1")
		assert.Nil(tt, err)
		assert.Equal(tt, "Hello1", string(content))
	})

	t.Run("write file at", func(tt *testing.T) {
		assert.Nil(tt, WriteFileAt(dir, "test2", []byte("Hello2"), 0644))
		assert.Nil(tt, WriteFileAt(dir, "test2", []byte("Hi"), 0644))
		content, err := ReadFileAt(dir, "test2")
		assert.Nil(tt, err)
		assert.Equal(tt, "Hi", string(content))

		_, statErr := os.Stat(path.Join(rootPath, ".test2.tmp"))
		assert.True(tt, os.IsNotExist(statErr))
	})

	t.Run("unlink file at", func(tt *testing.T) {
		assert.Nil(tt, UnlinkFileAt(dir, "test1"))
		_, err := ReadFileAt(dir, "test1")
		if assert.NotNil(tt, err) {
			assert.True(tt, IsNotExist(err))
		}
	})
}

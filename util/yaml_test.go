package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

type yamlParentType struct {
	Name  string        `yaml:"name"`
	Level yamlLevelType `yaml:"level"`
}

type yamlLevelType string

func (yl *yamlLevelType) UnmarshalYAML(node *yaml.Node) error {
	if node.Value == "fatal" {
		return NewYamlError(node, "unsupported level")
	}
	*yl = yamlLevelType(node.Value)
	return nil
}

func TestYAMLMarshal(t *testing.T) {
	y, err := MarshalYaml(&yamlParentType{
		Name:  "app",
		Level: yamlLevelType("info"),
	})
	assert.Nil(t, err)
	assert.Equal(t, "name: app\nlevel: info\n", y)
}

func TestYAMLUnmarshal(t *testing.T) {
	var yp yamlParentType

	assert.ErrorContains(t, UnmarshalYamlString(`
name: app
level: fatal
`, &yp), "yaml line 3:8: unsupported level")

	assert.Error(t, UnmarshalYamlString(`
name: app
colour: red
`, &yp))

	assert.NoError(t, UnmarshalYamlString("", &yp))
}

func TestNodeDecodeKnownFields(t *testing.T) {
	var root yaml.Node
	assert.NoError(t, yaml.Unmarshal([]byte("name: app\nlevel: warn\n"), &root))

	var yp yamlParentType
	assert.NoError(t, NodeDecodeKnownFields(&root, &yp))
	assert.Equal(t, "app", yp.Name)
	assert.Equal(t, yamlLevelType("warn"), yp.Level)
	assert.Equal(t, "1:1", GetYamlLocation(root.Content[0]))

	var unknown yaml.Node
	assert.NoError(t, yaml.Unmarshal([]byte("name: app\ncolour: red\n"), &unknown))
	assert.Error(t, NodeDecodeKnownFields(&unknown, &yp))
}

package util

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarshalYaml marshals the given source to a YAML string, e.g. to print the effective configuration
func MarshalYaml(source interface{}) (string, error) {
	writer := &bytes.Buffer{}
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(source); err != nil {
		return "", err
	}
	if err := encoder.Close(); err != nil {
		return "", err
	}
	return writer.String(), nil
}

// NewYamlError creates a new error with location information of YAML node
func NewYamlError(node *yaml.Node, message string) error {
	return fmt.Errorf("yaml line %d:%d: %s", node.Line, node.Column, message)
}

// UnmarshalYamlFile loads and unmarshals YAML from file to pointer to struct
func UnmarshalYamlFile(path string, output interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return UnmarshalYamlReader(file, output)
}

// UnmarshalYamlReader loads and unmarshals YAML from IO reader to pointer to struct
//
// Unknown fields are rejected so that typos in config files don't go unnoticed
func UnmarshalYamlReader(reader io.Reader, output interface{}) error {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true) // only works outside of custom unmarshalers
	if err := decoder.Decode(output); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// UnmarshalYamlString loads and unmarshals YAML in string to pointer to struct
func UnmarshalYamlString(contents string, output interface{}) error {
	return UnmarshalYamlReader(strings.NewReader(contents), output)
}

// NodeDecodeKnownFields is yaml.Node.Decode with unknown fields rejected
//
// yaml.v3 only checks known fields on a top-level Decoder, so the node is re-encoded and decoded again
func NodeDecodeKnownFields(node *yaml.Node, output interface{}) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	return UnmarshalYamlReader(bytes.NewReader(data), output)
}

// GetYamlLocation returns the line:column location of the node
func GetYamlLocation(node *yaml.Node) string {
	return fmt.Sprintf("%d:%d", node.Line, node.Column)
}

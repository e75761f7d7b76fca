package bconfig

// BaseConfig contains basic properties required for all typed Config sections
type BaseConfig interface {
	// GetType returns the type name
	GetType() string
}

package assets

import (
	_ "embed"
)

//go:embed default-config.yaml
var defaultConfig []byte

// DefaultConfig returns the built-in configuration that user files are merged over.
func DefaultConfig() []byte {
	return append([]byte(nil), defaultConfig...)
}

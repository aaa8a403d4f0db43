package config

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Backend is what the runner needs from a backend's persisted config file.
type Backend struct {
	BootstrapKey      string
	SystemInitialized bool
}

// ReadBackend reads the JSON config a backend persists on disk. An empty
// path yields a zero Backend.
func ReadBackend(path string) (Backend, error) {
	if path == "" {
		return Backend{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Backend{}, fmt.Errorf("read backend config: %w", err)
	}
	return ParseBackend(data)
}

func ParseBackend(data []byte) (Backend, error) {
	if !gjson.ValidBytes(data) {
		return Backend{}, fmt.Errorf("%w: backend config is not JSON", ErrInvalidConfig)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return Backend{}, fmt.Errorf("%w: backend config is not a JSON object", ErrInvalidConfig)
	}
	return Backend{
		BootstrapKey:      doc.Get("bootstrap_key").String(),
		SystemInitialized: doc.Get("system_initialized").Bool(),
	}, nil
}

package duckdb

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds DuckDB-specific settings from target.params.
type Params struct {
	// Extensions to install and load before introspection, e.g. "json".
	Extensions []string `mapstructure:"extensions"`

	// Settings applied with SET, e.g. memory_limit or threads.
	Settings map[string]string `mapstructure:"settings"`
}

// ParseParams decodes target.params.
func ParseParams(raw map[string]any) (*Params, error) {
	p := &Params{}
	if len(raw) == 0 {
		return p, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid duckdb params: %w", err)
	}
	return p, nil
}

package duckdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    *Params
		wantErr bool
	}{
		{
			name:  "nil params",
			input: nil,
			want:  &Params{},
		},
		{
			name:  "extensions",
			input: map[string]any{"extensions": []any{"json", "icu"}},
			want:  &Params{Extensions: []string{"json", "icu"}},
		},
		{
			name: "settings with non-string values",
			input: map[string]any{
				"settings": map[string]any{"memory_limit": "1GB", "threads": 2},
			},
			want: &Params{Settings: map[string]string{"memory_limit": "1GB", "threads": "2"}},
		},
		{
			name:    "extensions of the wrong shape",
			input:   map[string]any{"extensions": map[string]any{"json": true}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParams(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

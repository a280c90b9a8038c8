package commands

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		version  string
		wantLine string
	}{
		{"0.1.0", "leapsqlite v0.1.0\n"},
		{"1.2.3", "leapsqlite v1.2.3\n"},
		{"dev", "leapsqlite vdev\n"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			cmd := NewVersionCommand(tt.version)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)

			require.NoError(t, cmd.Execute())

			output := buf.String()
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(tt.wantLine)), "got: %s", output)
			assert.Contains(t, output, "SQLite connection adapter")
			assert.Contains(t, output, runtime.Version())
		})
	}
}

func TestVersionCommandMetadata(t *testing.T) {
	cmd := NewVersionCommand("test")

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Long, "Long should not be empty")
}

package adapter

import (
	"context"
	"log/slog"
	"testing"

	"github.com/leapstack-labs/leapsqlite/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDriver struct{ logger *slog.Logger }

func (d *stubDriver) Open(context.Context, Config) (core.Client, error) { return nil, nil }
func (d *stubDriver) Features() core.Features                           { return core.Features{} }
func (d *stubDriver) IntrospectWithPragma() bool                        { return true }

func TestUnknownDriverError_Error(t *testing.T) {
	err := &UnknownDriverError{
		Name:      "fake_driver",
		Available: []string{"embedded", "remote"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "fake_driver", "error should mention the unknown driver")
	assert.Contains(t, msg, "embedded", "error should list available drivers")
	assert.Contains(t, msg, "leapsqlite.yaml", "error should mention config file")
}

func TestRegister(t *testing.T) {
	Register("test_driver_internal", func(l *slog.Logger) Driver { return &stubDriver{logger: l} })

	assert.True(t, IsRegistered("test_driver_internal"))
	assert.Contains(t, ListDrivers(), "test_driver_internal")

	factory, ok := Get("test_driver_internal")
	require.True(t, ok)
	assert.NotNil(t, factory)
}

func TestNewDriver(t *testing.T) {
	Register("test_driver_new", func(l *slog.Logger) Driver { return &stubDriver{logger: l} })

	t.Run("registered driver gets a logger", func(t *testing.T) {
		d, err := NewDriver(Config{Driver: "test_driver_new"}, nil)
		require.NoError(t, err)
		stub, ok := d.(*stubDriver)
		require.True(t, ok)
		assert.NotNil(t, stub.logger, "nil logger should be replaced with a discard logger")
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := NewDriver(Config{Driver: "nope"}, nil)
		var unknown *UnknownDriverError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "nope", unknown.Name)
	})
}

func TestListDrivers_Sorted(t *testing.T) {
	Register("zz_test_driver", func(l *slog.Logger) Driver { return &stubDriver{logger: l} })
	Register("aa_test_driver", func(l *slog.Logger) Driver { return &stubDriver{logger: l} })

	names := ListDrivers()
	assert.IsNonDecreasing(t, names)
}

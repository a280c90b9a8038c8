package remote

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds remote-driver configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// RatePerSecond limits outgoing requests; zero means unlimited
	RatePerSecond float64 `mapstructure:"rate_per_second"`

	// Burst is the limiter bucket size (default 1)
	Burst int `mapstructure:"burst"`

	// TimeoutMS bounds each HTTP request; zero means no timeout
	TimeoutMS int `mapstructure:"timeout_ms"`
}

func decodeParams(raw map[string]any) (Params, error) {
	var p Params
	if len(raw) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return p, fmt.Errorf("failed to build params decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return p, fmt.Errorf("invalid remote params: %w", err)
	}
	if p.RatePerSecond < 0 || p.Burst < 0 || p.TimeoutMS < 0 {
		return p, fmt.Errorf("invalid remote params: values must not be negative")
	}
	return p, nil
}

package embedded

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds embedded-driver configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Pragmas to apply after the session opens (e.g., journal_mode: wal)
	Pragmas map[string]string `mapstructure:"pragmas"`

	// BusyTimeoutMS sets PRAGMA busy_timeout when positive
	BusyTimeoutMS int `mapstructure:"busy_timeout_ms"`

	// ForeignKeys toggles PRAGMA foreign_keys when set
	ForeignKeys *bool `mapstructure:"foreign_keys"`
}

// decodeParams decodes raw adapter params. Values coming from env vars or
// flags arrive as strings and are converted weakly.
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
		return p, fmt.Errorf("invalid embedded params: %w", err)
	}
	return p, nil
}

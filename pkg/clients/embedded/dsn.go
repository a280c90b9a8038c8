package embedded

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapsqlite/pkg/core"
)

const memoryDatabase = ":memory:"

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// BuildDSN constructs a SQLite URI filename from the database and open mode.
//
//	:memory:                      -> :memory:
//	app.db, mode rw               -> file:app.db?mode=rw
//	cache, mode memory            -> file:cache?mode=memory&cache=shared
//	file:app.db?immutable=1       -> passed through unchanged
func BuildDSN(cfg core.AdapterConfig) (string, error) {
	if !cfg.Mode.Valid() {
		return "", fmt.Errorf("unknown open mode %q", cfg.Mode)
	}
	db := cfg.Database
	switch {
	case db == "":
		return "", fmt.Errorf("database path is empty")
	case db == memoryDatabase:
		return db, nil
	case strings.HasPrefix(db, "file:"):
		return db, nil
	}

	mode := cfg.Mode
	if mode == "" {
		mode = core.ModeReadWriteCreate
	}

	dsn := "file:" + uriEscaper.Replace(db) + "?mode=" + string(mode)
	if mode == core.ModeMemory {
		dsn += "&cache=shared"
	}
	return dsn, nil
}

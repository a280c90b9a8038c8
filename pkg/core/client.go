package core

import "context"

// Client is an open session to a backing engine.
// Each method executes one statement of the named kind.
type Client interface {
	Select(ctx context.Context, sql string) (*Result, error)
	Insert(ctx context.Context, sql string) (*Result, error)
	Update(ctx context.Context, sql string) (*Result, error)
	Delete(ctx context.Context, sql string) (*Result, error)
	CreateTable(ctx context.Context, sql string) (*Result, error)
	DropTable(ctx context.Context, sql string) (*Result, error)

	// Close releases the session.
	Close() error
}

// Transactor is implemented by clients that can scope statements in a transaction.
type Transactor interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// FeatureReporter is implemented by clients that know their own capabilities.
type FeatureReporter interface {
	Features() Features
}

// Result is the raw payload of one executed statement.
type Result struct {
	Columns []string
	Rows    [][]any

	LastInsertID    int64
	HasLastInsertID bool
	RowsAffected    int64
}

package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_Iterates(t *testing.T) {
	c := NewCursor([]string{"id", "name"}, [][]any{{int64(1), "alice"}, {int64(2), "bob"}})

	assert.Nil(t, c.Row())
	require.True(t, c.Next())
	assert.Equal(t, Row{"id": int64(1), "name": "alice"}, c.Row())
	require.True(t, c.Next())
	assert.Equal(t, "bob", c.Row()["name"])
	assert.False(t, c.Next())
	assert.Nil(t, c.Row())
	assert.False(t, c.Next())
}

func TestCursor_ShortRowPadsNil(t *testing.T) {
	c := NewCursor([]string{"a", "b"}, [][]any{{1}})
	require.True(t, c.Next())
	v, ok := c.Row()["b"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestCursor_AllConsumesRemaining(t *testing.T) {
	c := NewCursor([]string{"n"}, [][]any{{1}, {2}, {3}})
	require.True(t, c.Next())

	rest := c.All()
	assert.Len(t, rest, 2)
	assert.Equal(t, 2, rest[0]["n"])
	assert.Empty(t, c.All())
}

func TestCursor_RowsIterator(t *testing.T) {
	c := NewCursor([]string{"n"}, [][]any{{1}, {2}, {3}})

	var seen []any
	for row := range c.Rows() {
		seen = append(seen, row["n"])
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []any{1, 2}, seen)
	require.True(t, c.Next())
	assert.Equal(t, 3, c.Row()["n"])
}

func TestCursor_Close(t *testing.T) {
	c := NewCursor([]string{"n"}, [][]any{{1}, {2}})
	require.NoError(t, c.Close())
	assert.False(t, c.Next())
	assert.Equal(t, []string{"n"}, c.Columns())
}

func TestQueryError_PreservesMessage(t *testing.T) {
	backend := errors.New(`near "FROM": syntax error`)
	qe := NewQueryError(StatementSelect, "SELECT * FROM", backend)

	assert.Equal(t, `near "FROM": syntax error`, qe.Error())
	assert.ErrorIs(t, qe, backend)

	wrapped := NewQueryError(StatementSelect, "SELECT 1", fmt.Errorf("remote: %w", qe))
	assert.Equal(t, qe.Message, wrapped.Message)
}

func TestConnectionError(t *testing.T) {
	backend := errors.New("unable to open database file")
	ce := &ConnectionError{Err: backend}
	assert.Equal(t, "unable to open database file", ce.Error())
	assert.ErrorIs(t, ce, backend)

	var target *ConnectionError
	assert.True(t, errors.As(fmt.Errorf("ctx: %w", ce), &target))
}

func TestStatementKind(t *testing.T) {
	for k := StatementSelect; k <= StatementDropTable; k++ {
		assert.Equal(t, k, ParseStatementKind(k.String()))
	}
	assert.Equal(t, StatementUnknown, ParseStatementKind("vacuum"))
	assert.True(t, StatementPragma.IsRead())
	assert.False(t, StatementInsert.IsRead())
}

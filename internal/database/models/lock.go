package models

import (
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// forUpdate adds a row lock when the database supports one. SQLite
// serializes writers on its own.
func forUpdate(idb bun.IDB, q *bun.SelectQuery) *bun.SelectQuery {
	if idb.Dialect().Name() == dialect.PG {
		return q.For("UPDATE")
	}
	return q
}

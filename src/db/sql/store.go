package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dayspend-server/src/budget"
	dbcache "dayspend-server/src/db"
)

// Store is the Postgres-backed storage accessor. It implements budget.Store
// and carries the explicit read cache for the hot per-user lists.
type Store struct {
	pool  *pgxpool.Pool
	cache *dbcache.Cache
}

func NewStore(pool *pgxpool.Pool, cache *dbcache.Cache) *Store {
	return &Store{pool: pool, cache: cache}
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ budget.Store = (*Store)(nil)

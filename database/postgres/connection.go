// Package postgres opens PostgreSQL connection pools through the pgx
// driver's database/sql adapter.
package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/vireo-db/vireo/config"
	"github.com/vireo-db/vireo/database/internal/sqlconn"
	"github.com/vireo-db/vireo/logger"
	"github.com/vireo-db/vireo/types"
)

// NewConnection opens a PostgreSQL pool from the configured URL.
// Both postgres:// and postgresql:// schemes are accepted by pgx.
func NewConnection(cfg *config.DataSource, log logger.Logger) (types.Executor, error) {
	connCfg, err := pgx.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrURLParse, err)
	}

	db := stdlib.OpenDB(*connCfg)
	return sqlconn.New(db, types.PostgreSQL, cfg, log)
}

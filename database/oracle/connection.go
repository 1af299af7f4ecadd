// Package oracle opens Oracle connection pools through the pure-Go
// go-ora driver.
package oracle

import (
	"database/sql"

	_ "github.com/sijms/go-ora/v2"

	"github.com/vireo-db/vireo/config"
	"github.com/vireo-db/vireo/database/internal/sqlconn"
	"github.com/vireo-db/vireo/logger"
	"github.com/vireo-db/vireo/types"
)

// NewConnection opens an Oracle pool. go-ora consumes the oracle://
// URL form directly, so the configured URL is passed through unchanged.
func NewConnection(cfg *config.DataSource, log logger.Logger) (types.Executor, error) {
	db, err := sql.Open("oracle", cfg.URL)
	if err != nil {
		return nil, err
	}
	return sqlconn.New(db, types.Oracle, cfg, log)
}

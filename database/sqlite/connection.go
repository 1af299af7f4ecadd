// Package sqlite opens SQLite databases through the pure-Go modernc
// driver, so builds stay cgo-free.
package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"

	"github.com/vireo-db/vireo/config"
	"github.com/vireo-db/vireo/database/internal/sqlconn"
	"github.com/vireo-db/vireo/logger"
	"github.com/vireo-db/vireo/types"
)

// NewConnection opens an SQLite database file derived from a sqlite://
// URL. sqlite://./app.db resolves to the relative path ./app.db and
// sqlite:///var/lib/app.db to the absolute path /var/lib/app.db; the
// opaque form sqlite::memory: opens an in-memory database.
func NewConnection(cfg *config.DataSource, log logger.Logger) (types.Executor, error) {
	path, err := filePath(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return sqlconn.New(db, types.SQLite, cfg, log)
}

func filePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrURLParse, err)
	}
	if u.Opaque != "" {
		return u.Opaque, nil
	}
	path := u.Host + u.Path
	if path == "" {
		return "", fmt.Errorf("%w: sqlite url has no file path", types.ErrURLParse)
	}
	return path, nil
}

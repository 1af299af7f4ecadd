// Package mysql opens MySQL connection pools through go-sql-driver.
package mysql

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"

	"github.com/vireo-db/vireo/config"
	"github.com/vireo-db/vireo/database/internal/sqlconn"
	"github.com/vireo-db/vireo/logger"
	"github.com/vireo-db/vireo/types"
)

// NewConnection opens a MySQL pool from a mysql:// URL. The URL is
// translated into the driver's native DSN; ParseTime is always enabled
// so temporal columns scan into time.Time.
func NewConnection(cfg *config.DataSource, log logger.Logger) (types.Executor, error) {
	dsn, err := buildDSN(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	return sqlconn.New(db, types.MySQL, cfg, log)
}

func buildDSN(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrURLParse, err)
	}

	dc := mysqldrv.NewConfig()
	dc.Net = "tcp"
	dc.Addr = u.Host
	dc.DBName = strings.TrimPrefix(u.Path, "/")
	dc.ParseTime = true

	if u.User != nil {
		dc.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			dc.Passwd = pw
		}
	}
	if q := u.Query(); len(q) > 0 {
		dc.Params = make(map[string]string, len(q))
		for key, vals := range q {
			if len(vals) > 0 {
				dc.Params[key] = vals[0]
			}
		}
	}

	return dc.FormatDSN(), nil
}

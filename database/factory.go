package database

import (
	"fmt"
	"net/url"

	"github.com/vireo-db/vireo/config"
	"github.com/vireo-db/vireo/database/mysql"
	"github.com/vireo-db/vireo/database/oracle"
	"github.com/vireo-db/vireo/database/postgres"
	"github.com/vireo-db/vireo/database/sqlite"
	"github.com/vireo-db/vireo/dialect"
	"github.com/vireo-db/vireo/logger"
	"github.com/vireo-db/vireo/types"
)

// Open connects to the backend selected by the URL scheme in cfg and
// returns a ready DataSource. The scheme decides both the driver and
// the dialect; everything downstream is vendor-neutral.
func Open(cfg *config.DataSource, log logger.Logger) (*DataSource, error) {
	vendor, err := ResolveVendor(cfg.URL)
	if err != nil {
		return nil, err
	}

	d, err := dialect.ForVendor(vendor)
	if err != nil {
		return nil, err
	}

	var exec types.Executor
	switch vendor {
	case types.MySQL:
		exec, err = mysql.NewConnection(cfg, log)
	case types.PostgreSQL:
		exec, err = postgres.NewConnection(cfg, log)
	case types.SQLite:
		exec, err = sqlite.NewConnection(cfg, log)
	case types.Oracle:
		exec, err = oracle.NewConnection(cfg, log)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", vendor, err)
	}

	return NewDataSource(exec, d, log), nil
}

// ResolveVendor maps a connection URL scheme onto a backend identifier.
// Unknown schemes yield ErrUnsupportedBackend, malformed URLs
// ErrURLParse.
func ResolveVendor(rawURL string) (types.Vendor, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrURLParse, err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("%w: missing scheme in %q", types.ErrURLParse, rawURL)
	}

	switch u.Scheme {
	case "mysql":
		return types.MySQL, nil
	case "postgres", "postgresql":
		return types.PostgreSQL, nil
	case "sqlite", "sqlite3":
		return types.SQLite, nil
	case "oracle":
		return types.Oracle, nil
	default:
		return "", fmt.Errorf("%w: %s", types.ErrUnsupportedBackend, u.Scheme)
	}
}

// Package dialect captures the per-backend SQL conventions the renderer
// is parametric over: placeholder style and numbering, identifier
// quoting, last-insert-id retrieval, and pagination syntax. All vendor
// branching lives here; the builder and mapper never switch on vendor.
package dialect

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/vireo-db/vireo/types"
)

// Dialect describes one backend's statement conventions.
type Dialect interface {
	// Name returns the vendor identifier.
	Name() types.Vendor

	// Placeholder returns the squirrel placeholder format applied to a
	// whole statement. Numbered formats ($1, :1) increment monotonically
	// across the entire statement, including a SET clause followed by a
	// WHERE clause in one UPDATE and across multi-row VALUES tuples.
	Placeholder() squirrel.PlaceholderFormat

	// Quote wraps an identifier in the vendor's quote character,
	// handling schema-qualified names part by part.
	Quote(identifier string) string

	// LastInsertIDQuery returns the follow-up statement that retrieves
	// the last inserted identifier on the same connection, and whether
	// the vendor supports one.
	LastInsertIDQuery() (string, bool)

	// Paginate applies limit/offset to a SELECT using vendor syntax.
	// A zero limit leaves the query unbounded.
	Paginate(b squirrel.SelectBuilder, limit, offset uint64) squirrel.SelectBuilder
}

// ForVendor resolves a vendor identifier to its Dialect.
func ForVendor(v types.Vendor) (Dialect, error) {
	switch v {
	case types.MySQL:
		return MySQL{}, nil
	case types.PostgreSQL:
		return Postgres{}, nil
	case types.SQLite:
		return SQLite{}, nil
	case types.Oracle:
		return Oracle{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedBackend, v)
	}
}

// quoteParts quotes a possibly schema-qualified identifier with the
// given quote character, leaving already quoted parts alone.
func quoteParts(identifier, q string) string {
	parts := strings.Split(identifier, ".")
	for i, part := range parts {
		if len(part) >= 2 && strings.HasPrefix(part, q) && strings.HasSuffix(part, q) {
			continue
		}
		parts[i] = q + part + q
	}
	return strings.Join(parts, ".")
}

// limitOffset is the LIMIT/OFFSET pagination shared by every vendor
// except Oracle.
func limitOffset(b squirrel.SelectBuilder, limit, offset uint64) squirrel.SelectBuilder {
	if limit > 0 {
		b = b.Limit(limit)
	}
	if offset > 0 {
		b = b.Offset(offset)
	}
	return b
}

// MySQL uses un-numbered ? placeholders and backtick quoting. The
// placeholder sequence resets per statement by construction.
type MySQL struct{}

func (MySQL) Name() types.Vendor { return types.MySQL }

func (MySQL) Placeholder() squirrel.PlaceholderFormat { return squirrel.Question }

func (MySQL) Quote(identifier string) string { return quoteParts(identifier, "`") }

func (MySQL) LastInsertIDQuery() (string, bool) { return "SELECT LAST_INSERT_ID()", true }

func (MySQL) Paginate(b squirrel.SelectBuilder, limit, offset uint64) squirrel.SelectBuilder {
	return limitOffset(b, limit, offset)
}

// Postgres uses positionally numbered $1, $2, ... placeholders with
// global per-statement numbering and ANSI double-quote quoting.
type Postgres struct{}

func (Postgres) Name() types.Vendor { return types.PostgreSQL }

func (Postgres) Placeholder() squirrel.PlaceholderFormat { return squirrel.Dollar }

func (Postgres) Quote(identifier string) string { return quoteParts(identifier, `"`) }

// LastInsertIDQuery returns LASTVAL(), the session-scoped sequence value
// of the most recent nextval call on this connection.
func (Postgres) LastInsertIDQuery() (string, bool) { return "SELECT LASTVAL()", true }

func (Postgres) Paginate(b squirrel.SelectBuilder, limit, offset uint64) squirrel.SelectBuilder {
	return limitOffset(b, limit, offset)
}

// SQLite accepts the $1, $2, ... numbered form and double-quote quoting.
type SQLite struct{}

func (SQLite) Name() types.Vendor { return types.SQLite }

func (SQLite) Placeholder() squirrel.PlaceholderFormat { return squirrel.Dollar }

func (SQLite) Quote(identifier string) string { return quoteParts(identifier, `"`) }

func (SQLite) LastInsertIDQuery() (string, bool) { return "SELECT LAST_INSERT_ROWID()", true }

func (SQLite) Paginate(b squirrel.SelectBuilder, limit, offset uint64) squirrel.SelectBuilder {
	return limitOffset(b, limit, offset)
}

// Oracle uses :1, :2, ... placeholders, double-quote quoting, and
// OFFSET/FETCH pagination (12c+). It has no session-level last-insert
// query; Save reports a nil identifier on this vendor.
type Oracle struct{}

func (Oracle) Name() types.Vendor { return types.Oracle }

func (Oracle) Placeholder() squirrel.PlaceholderFormat { return squirrel.Colon }

func (Oracle) Quote(identifier string) string { return quoteParts(identifier, `"`) }

func (Oracle) LastInsertIDQuery() (string, bool) { return "", false }

func (Oracle) Paginate(b squirrel.SelectBuilder, limit, offset uint64) squirrel.SelectBuilder {
	if limit == 0 && offset == 0 {
		return b
	}
	var sb strings.Builder
	if offset > 0 {
		fmt.Fprintf(&sb, "OFFSET %d ROWS", offset)
	}
	if limit > 0 {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "FETCH NEXT %d ROWS ONLY", limit)
	}
	return b.Suffix(sb.String())
}

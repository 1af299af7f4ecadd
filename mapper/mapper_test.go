package mapper

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vireo-db/vireo/builder"
	"github.com/vireo-db/vireo/database"
	"github.com/vireo-db/vireo/dialect"
	"github.com/vireo-db/vireo/entity"
	"github.com/vireo-db/vireo/types"
	"github.com/vireo-db/vireo/value"
)

// testExecutor adapts a sqlmock-backed *sql.DB to types.Executor.
type testExecutor struct {
	db     *sql.DB
	vendor types.Vendor
}

func (t *testExecutor) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.db.QueryContext(ctx, query, args...)
}

func (t *testExecutor) QueryRow(ctx context.Context, query string, args ...any) types.Row {
	return types.NewRowFromSQL(t.db.QueryRowContext(ctx, query, args...))
}

func (t *testExecutor) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.db.ExecContext(ctx, query, args...)
}

func (t *testExecutor) Begin(ctx context.Context) (types.Tx, error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &testTx{tx: tx}, nil
}

func (t *testExecutor) Vendor() types.Vendor             { return t.vendor }
func (t *testExecutor) Health(ctx context.Context) error { return t.db.PingContext(ctx) }
func (t *testExecutor) Stats() (map[string]any, error)   { return nil, nil }
func (t *testExecutor) Close() error                     { return t.db.Close() }

type testTx struct {
	tx *sql.Tx
}

func (t *testTx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *testTx) QueryRow(ctx context.Context, query string, args ...any) types.Row {
	return types.NewRowFromSQL(t.tx.QueryRowContext(ctx, query, args...))
}

func (t *testTx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *testTx) Commit() error   { return t.tx.Commit() }
func (t *testTx) Rollback() error { return t.tx.Rollback() }

// user is the test entity. Descriptors like userDesc are normally
// emitted by code generation; here they are written by hand.
type user struct {
	ID     int64
	Name   string
	Status string
}

var userDesc = entity.MustDescriptor("users",
	entity.ID("id"),
	entity.Column("name"),
	entity.Column("status"),
)

func (u *user) TableName() string { return "users" }

func (u *user) ToRecord() *value.Record {
	rec := value.NewRecord()
	if u.ID != 0 {
		rec.Set("id", value.Int(u.ID))
	} else {
		rec.Set("id", value.Nil())
	}
	return rec.
		Set("name", value.Text(u.Name)).
		Set("status", value.Text(u.Status))
}

func (u *user) FromRecord(rec *value.Record) error {
	u.ID = rec.GetOr("id").AsInt()
	u.Name = rec.GetOr("name").AsText()
	u.Status = rec.GetOr("status").AsText()
	return nil
}

// auditEntry has no identifier column, so by-id operations must fail.
type auditEntry struct {
	Action string
}

var auditDesc = entity.MustDescriptor("audit_log", entity.Column("action"))

func (a *auditEntry) TableName() string { return "audit_log" }

func (a *auditEntry) ToRecord() *value.Record {
	return value.NewRecord().Set("action", value.Text(a.Action))
}

func (a *auditEntry) FromRecord(rec *value.Record) error {
	a.Action = rec.GetOr("action").AsText()
	return nil
}

func newMapper(t *testing.T, vendor types.Vendor) (*Mapper[*user], sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	d, err := dialect.ForVendor(vendor)
	require.NoError(t, err)

	ds := database.NewDataSource(&testExecutor{db: db, vendor: vendor}, d, nil)
	return New(ds, userDesc, func() *user { return &user{} }), mock
}

func TestListDecodesRows(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectQuery(`SELECT "id", "name", "status" FROM users WHERE status = $1`).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status"}).
			AddRow(int64(1), "ada", "active").
			AddRow(int64(2), "grace", "active"))

	users, err := m.List(context.Background(), builder.NewWrapper().Eq(true, "status", "active"))
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, &user{ID: 1, Name: "ada", Status: "active"}, users[0])
	assert.Equal(t, &user{ID: 2, Name: "grace", Status: "active"}, users[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectOneNotFound(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectQuery(`SELECT "id", "name", "status" FROM users WHERE name = $1 LIMIT 1`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status"}))

	_, found, err := m.SelectOne(context.Background(), builder.NewWrapper().Eq(true, "name", "nobody"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectByID(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectQuery(`SELECT "id", "name", "status" FROM users WHERE "id" = $1 LIMIT 1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status"}).
			AddRow(int64(7), "ada", "active"))

	u, found, err := m.SelectByID(context.Background(), value.Int(7))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(7), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageZeroCountSkipsDataQuery(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectQuery(`SELECT COUNT(1) FROM users WHERE status = $1`).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	page, err := m.Page(context.Background(), builder.NewWrapper().Eq(true, "status", "gone"), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Empty(t, page.Records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageSecondPage(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectQuery(`SELECT COUNT(1) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))
	mock.ExpectQuery(`SELECT "id", "name", "status" FROM users LIMIT 2 OFFSET 2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status"}).
			AddRow(int64(3), "lin", "active").
			AddRow(int64(4), "bob", "idle"))

	page, err := m.Page(context.Background(), nil, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, int64(3), page.Pages())
	assert.True(t, page.HasNext())
	require.Len(t, page.Records, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageRejectsNonPositiveSize(t *testing.T) {
	m, _ := newMapper(t, types.SQLite)

	_, err := m.Page(context.Background(), nil, 1, 0)
	assert.ErrorIs(t, err, types.ErrData)
}

func TestSaveSkipsNilIdentifierAndFetchesID(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	// The identifier query only sees the insert when both run on the
	// same connection, so Save pins one with an implicit transaction.
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users ("name","status") VALUES ($1,$2)`).
		WithArgs("ada", "active").
		WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectQuery("SELECT LAST_INSERT_ROWID()").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(41)))
	mock.ExpectCommit()

	id, err := m.Save(context.Background(), &user{Name: "ada", Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, value.Int(41), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRollsBackWhenInsertFails(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users ("name","status") VALUES ($1,$2)`).
		WithArgs("ada", "active").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := m.Save(context.Background(), &user{Name: "ada", Status: "active"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveInsideCallerTransaction(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	// A caller transaction already pins the connection; Save must not
	// open a nested one.
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users ("name","status") VALUES ($1,$2)`).
		WithArgs("ada", "active").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectQuery("SELECT LAST_INSERT_ROWID()").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(8)))
	mock.ExpectCommit()

	tx, err := m.Begin(context.Background())
	require.NoError(t, err)
	defer tx.Close()

	id, err := m.WithTx(tx).Save(context.Background(), &user{Name: "ada", Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, value.Int(8), id)

	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBatch(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectExec(`INSERT INTO users ("name","status") VALUES ($1,$2),($3,$4)`).
		WithArgs("ada", "active", "grace", "idle").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := m.SaveBatch(context.Background(), []*user{
		{Name: "ada", Status: "active"},
		{Name: "grace", Status: "idle"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBatchEmpty(t *testing.T) {
	m, _ := newMapper(t, types.SQLite)

	_, err := m.SaveBatch(context.Background(), nil)
	assert.ErrorIs(t, err, types.ErrEmptyBatch)
}

func TestSaveBatchWithIdentifiersKeepsThem(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectExec(`INSERT INTO users ("id","name","status") VALUES ($1,$2,$3),($4,$5,$6)`).
		WithArgs(int64(10), "ada", "active", int64(11), "grace", "idle").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := m.SaveBatch(context.Background(), []*user{
		{ID: 10, Name: "ada", Status: "active"},
		{ID: 11, Name: "grace", Status: "idle"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBatchMixedIdentifiersRejected(t *testing.T) {
	m, _ := newMapper(t, types.SQLite)

	_, err := m.SaveBatch(context.Background(), []*user{
		{Name: "ada", Status: "active"},
		{ID: 11, Name: "grace", Status: "idle"},
	})
	assert.ErrorIs(t, err, types.ErrData)
}

func TestSaveOrUpdateInsertsWhenIdentifierNil(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users ("name","status") VALUES ($1,$2)`).
		WithArgs("ada", "active").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery("SELECT LAST_INSERT_ROWID()").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectCommit()

	id, err := m.SaveOrUpdate(context.Background(), &user{Name: "ada", Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, value.Int(9), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveOrUpdateUpdatesWhenIdentifierSet(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectExec(`UPDATE users SET "name" = $1, "status" = $2 WHERE "id" = $3`).
		WithArgs("ada", "idle", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := m.SaveOrUpdate(context.Background(), &user{ID: 9, Name: "ada", Status: "idle"})
	require.NoError(t, err)
	assert.Equal(t, value.Int(9), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateByIDRejectsNilIdentifier(t *testing.T) {
	m, _ := newMapper(t, types.SQLite)

	_, err := m.UpdateByID(context.Background(), &user{Name: "ada"})
	assert.ErrorIs(t, err, types.ErrMissingIdentifierValue)
}

func TestUpdateUsesWrapperSets(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectExec(`UPDATE users SET "status" = $1 WHERE status = $2`).
		WithArgs("archived", "idle").
		WillReturnResult(sqlmock.NewResult(0, 3))

	w := builder.NewWrapper().
		Set(true, "status", "archived").
		Eq(true, "status", "idle")
	n, err := m.Update(context.Background(), &user{}, w)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveByIDs(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectExec(`DELETE FROM users WHERE "id" IN ($1,$2)`).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := m.RemoveByIDs(context.Background(), []value.Value{value.Int(1), value.Int(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestByIDOperationsWithoutIdentifierFailBeforeSQL(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	d, err := dialect.ForVendor(types.SQLite)
	require.NoError(t, err)
	ds := database.NewDataSource(&testExecutor{db: db, vendor: types.SQLite}, d, nil)
	m := New(ds, auditDesc, func() *auditEntry { return &auditEntry{} })

	_, err = m.RemoveByID(context.Background(), value.Int(1))
	assert.ErrorIs(t, err, types.ErrMissingIdentifier)

	_, err = m.RemoveByIDs(context.Background(), []value.Value{value.Int(1)})
	assert.ErrorIs(t, err, types.ErrMissingIdentifier)

	_, _, err = m.SelectByID(context.Background(), value.Int(1))
	assert.ErrorIs(t, err, types.ErrMissingIdentifier)

	_, err = m.UpdateByID(context.Background(), &auditEntry{Action: "x"})
	assert.ErrorIs(t, err, types.ErrMissingIdentifier)
}

func TestExecIterAndFirst(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectQuery(`SELECT status, COUNT(1) AS n FROM users GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "n"}).
			AddRow("active", int64(2)).
			AddRow("idle", int64(1)))

	recs, err := m.ExecIter(context.Background(), "SELECT status, COUNT(1) AS n FROM users GROUP BY status")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, value.Text("active"), recs[0].GetOr("status"))
	assert.Equal(t, value.Int(2), recs[0].GetOr("n"))

	mock.ExpectQuery(`SELECT name FROM users WHERE id = $1`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	_, found, err := m.ExecFirst(context.Background(), "SELECT name FROM users WHERE id = $1", value.Int(99))
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxCommit(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM users WHERE "id" = $1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := m.Begin(context.Background())
	require.NoError(t, err)
	defer tx.Close()

	n, err := m.WithTx(tx).RemoveByID(context.Background(), value.Int(5))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionCloseRollsBack(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := m.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Close())

	// Close after an outcome is a no-op.
	require.NoError(t, tx.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecDropSurfacesRowsAffectedFailure(t *testing.T) {
	m, mock := newMapper(t, types.SQLite)

	mock.ExpectExec("DELETE FROM users").
		WillReturnResult(sqlmock.NewErrorResult(assert.AnError))

	_, err := m.ExecDrop(context.Background(), "DELETE FROM users")
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveUnderOracleReturnsNilIdentifier(t *testing.T) {
	m, mock := newMapper(t, types.Oracle)

	mock.ExpectExec(`INSERT INTO users ("name","status") VALUES (:1,:2)`).
		WithArgs("ada", "active").
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := m.Save(context.Background(), &user{Name: "ada", Status: "active"})
	require.NoError(t, err)
	assert.True(t, id.IsNil())
	assert.NoError(t, mock.ExpectationsWereMet())
}

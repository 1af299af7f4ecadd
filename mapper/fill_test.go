package mapper

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vireo-db/vireo/database"
	"github.com/vireo-db/vireo/dialect"
	"github.com/vireo-db/vireo/entity"
	"github.com/vireo-db/vireo/types"
	"github.com/vireo-db/vireo/value"
)

// task carries fill rules: created_by is stamped on insert, revision on
// every write.
type task struct {
	ID    int64
	Title string
}

var taskDesc = entity.MustDescriptor("tasks",
	entity.ID("id"),
	entity.Column("title"),
	entity.Column("created_by").WithFill(entity.FillValue(entity.TriggerInsert, "system")),
	entity.Column("revision").WithFill(entity.FillFunc(entity.TriggerAlways, func() value.Value {
		return value.Int(2)
	})),
)

func (tk *task) TableName() string { return "tasks" }

func (tk *task) ToRecord() *value.Record {
	rec := value.NewRecord()
	if tk.ID != 0 {
		rec.Set("id", value.Int(tk.ID))
	} else {
		rec.Set("id", value.Nil())
	}
	return rec.Set("title", value.Text(tk.Title))
}

func (tk *task) FromRecord(rec *value.Record) error {
	tk.ID = rec.GetOr("id").AsInt()
	tk.Title = rec.GetOr("title").AsText()
	return nil
}

func newTaskMapper(t *testing.T) (*Mapper[*task], sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	d, err := dialect.ForVendor(types.PostgreSQL)
	require.NoError(t, err)
	ds := database.NewDataSource(&testExecutor{db: db, vendor: types.PostgreSQL}, d, nil)
	return New(ds, taskDesc, func() *task { return &task{} }), mock
}

func TestSaveAppliesInsertFills(t *testing.T) {
	m, mock := newTaskMapper(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO tasks ("title","created_by","revision") VALUES ($1,$2,$3)`).
		WithArgs("write docs", "system", int64(2)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT LASTVAL()").
		WillReturnRows(sqlmock.NewRows([]string{"lastval"}).AddRow(int64(1)))
	mock.ExpectCommit()

	id, err := m.Save(context.Background(), &task{Title: "write docs"})
	require.NoError(t, err)
	assert.Equal(t, value.Int(1), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateByIDAppliesUpdateFillsOnly(t *testing.T) {
	m, mock := newTaskMapper(t)

	// created_by fires only on insert, so the entity's own (absent → NULL)
	// value is bound; revision fires on every write.
	mock.ExpectExec(`UPDATE tasks SET "title" = $1, "created_by" = $2, "revision" = $3 WHERE "id" = $4`).
		WithArgs("edited", nil, int64(2), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := m.UpdateByID(context.Background(), &task{ID: 7, Title: "edited"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package sqldb

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*Sqldb, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Sqldb{options: defaultOptions, db: db}, mock
}

func TestCreateTable(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"CREATE TABLE IF NOT EXISTS `netease` (`_id` INT(12) NOT NULL PRIMARY KEY AUTO_INCREMENT," +
			"`song_id` MEDIUMTEXT,`_url` VARCHAR(255)) ENGINE=MyISAM DEFAULT CHARSET=utf8mb4;",
	)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := d.CreateTable(TableData{
		TableName: "netease",
		ColumnNames: []Field{
			{Title: "song_id", Type: "MEDIUMTEXT"},
			{Title: "_url", Type: "VARCHAR(255)"},
		},
		AutoKey: true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTableEmpty(t *testing.T) {
	d, _ := newMockDB(t)
	assert.ErrorIs(t, d.CreateTable(TableData{TableName: "x"}), ErrEmptyColumn)
}

func TestInsert(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO `netease`(`song_id`,`total`) VALUES (?,?),(?,?);",
	)).WithArgs("1", "20000", "2", "30000").WillReturnResult(sqlmock.NewResult(2, 2))

	err := d.Insert(TableData{
		TableName:   "netease",
		ColumnNames: []Field{{Title: "song_id"}, {Title: "total"}},
		Args:        []interface{}{"1", "20000", "2", "30000"},
		DataCount:   2,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertInvalid(t *testing.T) {
	d, mock := newMockDB(t)

	tests := []struct {
		name    string
		data    TableData
		wantErr bool
	}{
		{name: "no columns", data: TableData{TableName: "t", DataCount: 1}, wantErr: true},
		{name: "no rows", data: TableData{TableName: "t", ColumnNames: []Field{{Title: "a"}}}},
		{name: "args mismatch", data: TableData{
			TableName:   "t",
			ColumnNames: []Field{{Title: "a"}, {Title: "b"}},
			Args:        []interface{}{"1"},
			DataCount:   1,
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Insert(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDropTable(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE `weird``name`")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, d.DropTable(TableData{TableName: "weird`name"}))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Error(t, d.DropTable(TableData{}))
}

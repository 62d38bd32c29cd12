package sqlfunc

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlitejson/internal/testutil"
)

// hookConnector opens in-memory connections with the functions installed.
type hookConnector struct {
	drv *sqlite3.SQLiteDriver
}

func (c hookConnector) Connect(context.Context) (driver.Conn, error) { return c.drv.Open(":memory:") }
func (c hookConnector) Driver() driver.Driver                       { return c.drv }

func openDB(t *testing.T, rnd Rand) *sql.DB {
	t.Helper()
	drv := &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return Register(conn, rnd)
		},
	}
	db := sql.OpenDB(hookConnector{drv: drv})
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func queryOne(t *testing.T, db *sql.DB, query string, args ...any) any {
	t.Helper()
	var v any
	require.NoError(t, db.QueryRow(query, args...).Scan(&v))
	return v
}

func TestSQL_Contains(t *testing.T) {
	db := openDB(t, NewRand(1))

	assert.Equal(t, int64(1), queryOne(t, db, `SELECT json_array_contains('[1,2,3]', 2)`))
	assert.Equal(t, int64(0), queryOne(t, db, `SELECT json_array_contains('[1,2,3]', 5)`))
	assert.Equal(t, int64(1), queryOne(t, db, `SELECT json_array_contains('["a","b"]', 'b')`))
	assert.Equal(t, int64(1), queryOne(t, db, `SELECT json_array_contains('[true]', 1)`))
	assert.Nil(t, queryOne(t, db, `SELECT json_array_contains(NULL, 1)`))
}

func TestSQL_ContainsInWhere(t *testing.T) {
	db := openDB(t, NewRand(1))

	_, err := db.Exec(`CREATE TABLE docs (id INTEGER PRIMARY KEY, body TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO docs (body) VALUES ('{"tags":["x","y"]}'), ('{"tags":["z"]}'), ('{"tags":["y"]}')`)
	require.NoError(t, err)

	rows, err := db.Query(`SELECT id FROM docs WHERE json_array_contains(json_extract(body, '$.tags'), 'y') ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int64{1, 3}, ids)
}

func TestSQL_DropDup(t *testing.T) {
	db := openDB(t, NewRand(1))

	assert.Equal(t, int64(3), queryOne(t, db, `SELECT json_array_length(json_array_dropdup('[1,1,2,2,3]'))`))
	assert.Equal(t, int64(0), queryOne(t, db, `SELECT json_array_length(json_array_dropdup('[]'))`))
	assert.Nil(t, queryOne(t, db, `SELECT json_array_dropdup(NULL)`))
}

func TestSQL_RandElem(t *testing.T) {
	db := openDB(t, testutil.NewScriptedRand(1, 0))

	assert.Equal(t, "b", queryOne(t, db, `SELECT json_array_randelem('["a","b","c"]')`))
	assert.Equal(t, "a", queryOne(t, db, `SELECT json_array_randelem('["a","b","c"]')`))
}

func TestSQL_RandElemSingle(t *testing.T) {
	db := openDB(t, NewRand(99))

	for i := 0; i < 5; i++ {
		assert.Equal(t, int64(7), queryOne(t, db, `SELECT json_array_randelem('[7]')`))
	}
}

func TestSQL_RandElemSeeded(t *testing.T) {
	const seed = 1234
	db := openDB(t, NewRand(seed))

	array := `[10,20,30,40,50,60,70,80]`
	var vals []int
	for v := range 8 {
		vals = append(vals, (v+1)*10)
	}

	replay := NewRand(seed)
	for i := 0; i < 25; i++ {
		want := int64(vals[replay.IntN(len(vals))])
		assert.Equal(t, want, queryOne(t, db, `SELECT json_array_randelem(?)`, array))
	}
}

func TestSQL_Errors(t *testing.T) {
	db := openDB(t, NewRand(1))

	tests := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{"randelem empty", `SELECT json_array_randelem('[]')`, "json_array_randelem: empty array"},
		{"contains invalid", `SELECT json_array_contains('[1,', 1)`, "json_array_contains"},
		{"dropdup not array", `SELECT json_array_dropdup('{"a":1}')`, "expected JSON array"},
		{"randelem invalid", `SELECT json_array_randelem('nope')`, "json_array_randelem"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			err := db.QueryRow(tt.query).Scan(&v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRegister_NilRandUsesSystem(t *testing.T) {
	db := openDB(t, nil)

	v := queryOne(t, db, `SELECT json_array_randelem('[1,2,3]')`)
	assert.Contains(t, []any{int64(1), int64(2), int64(3)}, v)
}

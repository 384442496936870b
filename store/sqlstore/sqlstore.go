package sqlstore

import (
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sukanto-m/wiki-featured/store"
)

type nullLogger struct{}

func (l nullLogger) Printf(format string, v ...interface{}) {}

// SQLStore keeps archive rows in an SQL database (sqlite3 or postgres).
type SQLStore struct {
	db         *sql.DB
	driverName string
	ErrLog     store.Logger
	DebugLog   store.Logger
}

// eg "sqlite3", "/tmp/wiki.db"
// eg "postgres", "postgres://username@localhost/dbname"
func New(driver string, connStr string) (*SQLStore, error) {
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, err
	}
	return NewFromDB(driver, db)
}

func NewFromDB(driver string, db *sql.DB) (*SQLStore, error) {
	err := db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}

	ss := SQLStore{
		db:         db,
		driverName: driver,
		ErrLog:     nullLogger{},
		DebugLog:   nullLogger{},
	}

	err = ss.checkSchema()
	if err != nil {
		db.Close()
		return nil, err
	}

	return &ss, nil
}

// Same as New(), but if driver or connStr is missing, will try and read
// them from environment vars: WIKIFEED_DRIVER & WIKIFEED_DB.
// If both driver and WIKIFEED_DRIVER are empty, default is "sqlite3".
func NewWithEnv(driver string, connStr string) (*SQLStore, error) {
	if connStr == "" {
		connStr = os.Getenv("WIKIFEED_DB")
	}
	if driver == "" {
		driver = os.Getenv("WIKIFEED_DRIVER")
		if driver == "" {
			driver = "sqlite3"
		}
	}

	if connStr == "" {
		return nil, fmt.Errorf("no database specified (set WIKIFEED_DB?)")
	}

	return New(driver, connStr)
}

func (ss *SQLStore) Close() {
	if ss.db != nil {
		ss.db.Close()
		ss.db = nil
	}
}

func (ss *SQLStore) rebind(q string) string {
	return rebind(bindType(ss.driverName), q)
}

// insertIgnoreSQL builds the insert-if-absent statement for a variant
// table. Rows whose composite key already exists are skipped silently.
func (ss *SQLStore) insertIgnoreSQL(v store.Variant) string {
	cols := fmt.Sprintf("date, section, title, %s, url", v.AuxCol)
	switch ss.driverName {
	case "sqlite3", "mysql":
		return fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (?,?,?,?,?)",
			v.Table, cols)
	default:
		// postgres and friends
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (?,?,?,?,?) ON CONFLICT (%s) DO NOTHING",
			v.Table, cols, strings.Join(v.KeyCols, ", "))
	}
}

// Stash merges rows into a variant table, inserting each row only if no
// row with its composite key exists yet. Returns the number of rows
// actually newly inserted, so re-running over an overlapping date range
// is a no-op for already-seen keys.
func (ss *SQLStore) Stash(v store.Variant, rows ...*store.Row) (int, error) {
	tx, err := ss.db.Begin()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(ss.rebind(ss.insertIgnoreSQL(v)))
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	inserted := 0
	for _, row := range rows {
		res, err := stmt.Exec(row.Date, row.Section, row.Title, row.Extra, row.URL)
		if err != nil {
			stmt.Close()
			tx.Rollback()
			return 0, fmt.Errorf("insert failed (%s %s %q): %w", row.Date, row.Section, row.Title, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			stmt.Close()
			tx.Rollback()
			return 0, err
		}
		inserted += int(n)
	}
	stmt.Close()

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// Latest returns the watermark - the max date present in the variant
// table - or "" when nothing is stored yet.
func (ss *SQLStore) Latest(v store.Variant) (string, error) {
	var d sql.NullString
	err := ss.db.QueryRow("SELECT MAX(date) FROM " + v.Table).Scan(&d)
	if err != nil {
		return "", err
	}
	if !d.Valid {
		return "", nil
	}
	return d.String, nil
}

// DayCounts returns per date+section row counts within the (inclusive)
// date range. Empty bounds are unbounded.
func (ss *SQLStore) DayCounts(v store.Variant, from, to string) ([]store.DayCount, error) {
	where, params := dateWhere(from, to)
	q := `SELECT date, section, COUNT(*)
           FROM ` + v.Table + `
           ` + where + `
           GROUP BY date, section
           ORDER BY date, section`
	ss.DebugLog.Printf("daycounts: %s %v\n", q, params)

	rows, err := ss.db.Query(ss.rebind(q), params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []store.DayCount{}
	for rows.Next() {
		var dc store.DayCount
		if err := rows.Scan(&dc.Date, &dc.Section, &dc.Count); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Months lists the distinct YYYY-MM months present in a variant table,
// ascending.
func (ss *SQLStore) Months(v store.Variant) ([]string, error) {
	// substr() works on both sqlite and postgres
	rows, err := ss.db.Query("SELECT DISTINCT substr(date,1,7) FROM " + v.Table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var ym string
		if err := rows.Scan(&ym); err != nil {
			return nil, err
		}
		out = append(out, ym)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// MonthRows returns all rows of one section within a calendar month.
func (ss *SQLStore) MonthRows(v store.Variant, section string, year, month int) ([]*store.Row, error) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	q := fmt.Sprintf(`SELECT date, section, title, %s, url
           FROM %s
           WHERE section=? AND date BETWEEN ? AND ?
           ORDER BY date`, v.AuxCol, v.Table)

	rows, err := ss.db.Query(ss.rebind(q), section, store.Day(first), store.Day(last))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*store.Row{}
	for rows.Next() {
		r := &store.Row{}
		if err := rows.Scan(&r.Date, &r.Section, &r.Title, &r.Extra, &r.URL); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Build a WHERE clause from a filter.
func buildWhere(filt *store.Filter) (string, []interface{}) {
	params := []interface{}{}
	frags := []string{}

	if filt.DateFrom != "" {
		frags = append(frags, "date>=?")
		params = append(params, filt.DateFrom)
	}
	if filt.DateTo != "" {
		frags = append(frags, "date<=?")
		params = append(params, filt.DateTo)
	}
	if len(filt.Sections) > 0 {
		marks := []string{}
		for _, sec := range filt.Sections {
			marks = append(marks, "?")
			params = append(params, sec)
		}
		frags = append(frags, "section IN ("+strings.Join(marks, ",")+")")
	}

	var whereClause string
	if len(frags) > 0 {
		whereClause = "WHERE " + strings.Join(frags, " AND ")
	}
	return whereClause, params
}

func dateWhere(from, to string) (string, []interface{}) {
	return buildWhere(&store.Filter{DateFrom: from, DateTo: to})
}

// FetchCount returns the number of rows matching a filter.
func (ss *SQLStore) FetchCount(v store.Variant, filt *store.Filter) (int, error) {
	whereClause, params := buildWhere(filt)
	q := `SELECT COUNT(*) FROM ` + v.Table + ` ` + whereClause
	var cnt int
	err := ss.db.QueryRow(ss.rebind(q), params...).Scan(&cnt)
	return cnt, err
}

// Fetch streams rows matching a filter, ordered by date then section.
func (ss *SQLStore) Fetch(v store.Variant, filt *store.Filter) store.RowIter {
	whereClause, params := buildWhere(filt)

	q := fmt.Sprintf(`SELECT date, section, title, %s, url
               FROM %s
               %s ORDER BY date, section, title`, v.AuxCol, v.Table, whereClause)
	if filt.Count > 0 {
		q += fmt.Sprintf(" LIMIT %d", filt.Count)
	}

	ss.DebugLog.Printf("fetch: %s\n", q)
	ss.DebugLog.Printf("fetch params: %+v\n", params)

	rows, err := ss.db.Query(ss.rebind(q), params...)
	return &sqlRowIter{rows: rows, err: err}
}

type sqlRowIter struct {
	rows    *sql.Rows
	current *store.Row
	err     error
}

func (it *sqlRowIter) Close() error {
	// may not even have got as far as initing rows
	var err error
	if it.rows != nil {
		err = it.rows.Close()
		it.rows = nil
	}
	return err
}

func (it *sqlRowIter) Err() error {
	return it.err
}

// if it returns true there will be a row.
func (it *sqlRowIter) Next() bool {
	it.current = nil
	if it.err != nil {
		return false
	}
	if !it.rows.Next() {
		it.err = it.rows.Err()
		return false
	}

	r := &store.Row{}
	if err := it.rows.Scan(&r.Date, &r.Section, &r.Title, &r.Extra, &r.URL); err != nil {
		it.err = err
		return false
	}
	it.current = r
	return true
}

func (it *sqlRowIter) Row() *store.Row {
	return it.current
}

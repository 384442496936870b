package sqlstore

import (
	"fmt"
)

const schemaVer = 1

// sqliteSchema is applied automatically to empty sqlite databases.
var sqliteSchema = []string{
	`CREATE TABLE most_read (
		date TEXT NOT NULL,
		section TEXT NOT NULL,
		title TEXT NOT NULL,
		extra TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (date, section, title) )`,
	`CREATE INDEX most_read_date ON most_read(date)`,

	`CREATE TABLE featured (
		date TEXT NOT NULL,
		section TEXT NOT NULL,
		title TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (date, section, title, url) )`,
	`CREATE INDEX featured_date ON featured(date)`,

	`CREATE TABLE version (ver INTEGER NOT NULL)`,
	`INSERT INTO version (ver) VALUES (1)`,
}

// PostgresSchema is the DDL for a postgres archive. Schema management
// is manual for postgres - create it yourself before pointing the
// ingesters at it.
const PostgresSchema = `
CREATE TABLE most_read (
	date TEXT NOT NULL,
	section TEXT NOT NULL,
	title TEXT NOT NULL,
	extra TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (date, section, title) );
CREATE INDEX most_read_date ON most_read(date);

CREATE TABLE featured (
	date TEXT NOT NULL,
	section TEXT NOT NULL,
	title TEXT NOT NULL,
	text TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (date, section, title, url) );
CREATE INDEX featured_date ON featured(date);

CREATE TABLE version (ver INTEGER NOT NULL);
INSERT INTO version (ver) VALUES (1);
`

func (ss *SQLStore) checkSchema() error {
	ver, err := ss.schemaVersion()
	if err != nil {
		return err
	}
	if ver == schemaVer {
		return nil // up to date.
	}

	// auto schema management currently only for sqlite.
	if ss.driverName != "sqlite3" {
		return fmt.Errorf("missing schema (apply sqlstore.PostgresSchema?)")
	}

	if ver != 0 {
		return fmt.Errorf("no schema upgrade path (from ver %d)", ver)
	}

	for _, stmt := range sqliteSchema {
		_, err := ss.db.Exec(stmt)
		if err != nil {
			return err
		}
	}

	return nil
}

func (ss *SQLStore) schemaVersion() (int, error) {
	var v int
	err := ss.db.QueryRow(`SELECT MAX(ver) FROM version`).Scan(&v)
	if err != nil {
		// no version table means a virgin database
		return 0, nil
	}
	return v, nil
}

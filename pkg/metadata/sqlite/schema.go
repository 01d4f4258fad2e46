package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
)

const recordsTableDDL = `
CREATE TABLE IF NOT EXISTS records (
    account TEXT NOT NULL,
    file_id TEXT NOT NULL,
    directory_id TEXT NOT NULL,
    server_url TEXT NOT NULL,
    file_name_view TEXT NOT NULL,
    etag TEXT NOT NULL,
    date INTEGER NOT NULL,
    size INTEGER NOT NULL,
    directory INTEGER NOT NULL,
    PRIMARY KEY (account, file_id)
);
`

const directoriesTableDDL = `
CREATE TABLE IF NOT EXISTS directories (
    account TEXT NOT NULL,
    directory_id TEXT NOT NULL,
    file_id TEXT NOT NULL,
    server_url TEXT NOT NULL,
    PRIMARY KEY (account, directory_id)
);
`

const tagsTableDDL = `
CREATE TABLE IF NOT EXISTS tags (
    account TEXT NOT NULL,
    file_id TEXT NOT NULL,
    tag_data BLOB,
    PRIMARY KEY (account, file_id)
);
`

const recordsDirectoryIndexDDL = `CREATE INDEX IF NOT EXISTS idx_records_directory ON records(account, directory_id);`

// initSchema creates all tables in the database.
func initSchema(db *sql.DB) error {
	ddls := []string{
		recordsTableDDL,
		directoriesTableDDL,
		tagsTableDDL,
		recordsDirectoryIndexDDL,
	}

	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}

// connPragmas are applied by the driver to every pooled connection.
// busy_timeout and synchronous are per-connection settings, so setting them
// once with db.Exec would only reach the first connection.
var connPragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"busy_timeout(5000)",
	"temp_store(MEMORY)",
}

// dataSourceName appends connPragmas to path as _pragma query parameters.
func dataSourceName(path string) string {
	params := make([]string, len(connPragmas))
	for i, pragma := range connPragmas {
		params[i] = "_pragma=" + pragma
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

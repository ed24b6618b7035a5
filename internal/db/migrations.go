package db

import (
	"context"
	"fmt"
)

// columnMigration adds a column to databases created before it existed.
type columnMigration struct {
	table  string
	column string
	ddl    string
}

var columnMigrations = []columnMigration{
	{
		table:  "users",
		column: "role",
		ddl:    "ALTER TABLE users ADD COLUMN role TEXT NOT NULL DEFAULT 'user'",
	},
}

// migrate brings older databases up to the current schema.
func (db *DB) migrate() error {
	for _, m := range columnMigrations {
		exists, err := db.hasColumn(m.table, m.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := db.ExecContext(context.Background(), m.ddl); err != nil {
			return fmt.Errorf("failed to add %s.%s: %w", m.table, m.column, err)
		}
	}
	return nil
}

func (db *DB) hasColumn(table, column string) (bool, error) {
	rows, err := db.QueryContext(context.Background(),
		"SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

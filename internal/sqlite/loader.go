package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// loadAll rebuilds the query tables from the JSONL files in dataDir inside
// one transaction. Records without an id, malformed records and fields the
// entity does not know are skipped. References to parents that did not load
// are cleared.
func loadAll(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	for _, d := range defs {
		records, err := readJSONL(filepath.Join(dataDir, d.file))
		if err != nil {
			return err
		}
		if err := insertRecords(tx, d, records); err != nil {
			return fmt.Errorf("load %s: %w", d.file, err)
		}
	}

	for _, d := range defs {
		for col, parent := range d.parents {
			pd, _ := defByResource(parent)
			q := fmt.Sprintf("UPDATE %s SET %s = NULL WHERE %s IS NOT NULL AND %s NOT IN (SELECT id FROM %s)",
				d.table, col, col, col, pd.table)
			if _, err := tx.Exec(q); err != nil {
				return fmt.Errorf("clear dangling %s.%s: %w", d.table, col, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

func insertRecords(tx *sql.Tx, d *entityDef, records []json.RawMessage) error {
	if len(records) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(d.fields)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)", d.table, d.columnList(), placeholders))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		args, err := d.valuesFromJSON(rec)
		if err != nil || args[0] == nil {
			continue
		}
		if _, err := stmt.Exec(args...); err != nil {
			continue
		}
	}
	return nil
}

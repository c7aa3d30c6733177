package gallery

import (
	"context"
	"database/sql"
)

func schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS samples (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    label     INTEGER NOT NULL,
    dim       INTEGER NOT NULL,
    embedding BLOB NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS samples_label ON samples(label);`,
		`CREATE TABLE IF NOT EXISTS gallery_revision (
    id    INTEGER PRIMARY KEY CHECK (id = 1),
    value INTEGER NOT NULL
);`,
		`INSERT OR IGNORE INTO gallery_revision(id, value) VALUES (1, 0);`,
	}
}

// revisionTriggers bump gallery_revision on every row change of samples.
func revisionTriggers() []string {
	trigger := func(suffix, event string) string {
		return `CREATE TRIGGER IF NOT EXISTS samples_` + suffix + ` AFTER ` + event + ` ON samples
BEGIN
    UPDATE gallery_revision SET value = value + 1 WHERE id = 1;
END;`
	}
	return []string{
		trigger("ai", "INSERT"),
		trigger("au", "UPDATE"),
		trigger("ad", "DELETE"),
	}
}

// EnsureSchema creates the samples and revision tables and their triggers
// if they do not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range append(schema(), revisionTriggers()...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

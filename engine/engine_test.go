package engine

import (
	"path/filepath"
	"testing"
)

func TestOpenMemory_SharesOneDatabase(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer db.Close()

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d, want 1", got)
	}
	if _, err := db.Exec(`CREATE TABLE labels(label INTEGER)`); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// Every statement must see the table created above.
	for i := 0; i < 3; i++ {
		if _, err := db.Exec(`INSERT INTO labels(label) VALUES (?)`, i); err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}
	var top int
	if err := db.QueryRow(`SELECT MAX(label) FROM labels`).Scan(&top); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if top != 2 {
		t.Fatalf("MAX(label) = %d, want 2", top)
	}
}

func TestOpen_File(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "gallery.db")
	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", dsn, err)
	}
	if _, err := db.Exec(`CREATE TABLE t(x BLOB)`); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	db, err = Open(dsn)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()
	var name string
	if err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table'`).Scan(&name); err != nil {
		t.Fatalf("sqlite_master lookup failed: %v", err)
	}
	if name != "t" {
		t.Fatalf("table = %q, want t", name)
	}
}

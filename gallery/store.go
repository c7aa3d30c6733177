package gallery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/viant/vecmatch/index"
	"github.com/viant/vecmatch/vector"
)

// Sample is one labeled embedding.
type Sample struct {
	Label  vector.Label  `json:"label"`
	Vector vector.Vector `json:"vector"`
}

// Store is a SQLite-backed gallery of labeled embeddings. All vectors in a
// gallery share one dimension, fixed by the first sample added.
type Store struct {
	db *sql.DB
}

// NewStore creates a gallery over db, ensuring its schema exists. Nearest
// requires engine.RegisterVectorFunctions to have been called before db was
// opened.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("gallery: db is nil")
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("gallery: ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Dim returns the gallery dimension, or 0 when the gallery is empty.
func (s *Store) Dim(ctx context.Context) (int, error) {
	return dim(ctx, s.db)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func dim(ctx context.Context, q queryRower) (int, error) {
	var d int
	err := q.QueryRowContext(ctx, `SELECT dim FROM samples ORDER BY id LIMIT 1`).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return d, err
}

// Add inserts samples in one transaction. Every sample must match the
// gallery dimension; otherwise nothing is inserted.
func (s *Store) Add(ctx context.Context, samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	want, err := dim(ctx, tx)
	if err != nil {
		return err
	}
	if want == 0 {
		want = len(samples[0].Vector)
	}
	if want == 0 {
		return fmt.Errorf("gallery: sample 0 has an empty vector: %w", vector.ErrDimensionMismatch)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO samples(label, dim, embedding) VALUES(?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, sample := range samples {
		if err := vector.CheckDimension(sample.Vector, want); err != nil {
			return fmt.Errorf("gallery: sample %d: %w", i, err)
		}
		if err := vector.CheckFinite(sample.Vector); err != nil {
			return fmt.Errorf("gallery: sample %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, int64(sample.Label), want, vector.EncodeEmbedding(sample.Vector)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Dataset loads every sample in insertion order.
func (s *Store) Dataset(ctx context.Context) (vector.Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label, embedding FROM samples ORDER BY id`)
	if err != nil {
		return vector.Dataset{}, err
	}
	defer rows.Close()

	var ds vector.Dataset
	for rows.Next() {
		var label int64
		var blob []byte
		if err := rows.Scan(&label, &blob); err != nil {
			return vector.Dataset{}, err
		}
		vec, err := vector.DecodeEmbedding(blob)
		if err != nil {
			return vector.Dataset{}, err
		}
		ds.Labels = append(ds.Labels, vector.Label(label))
		ds.Vectors = append(ds.Vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return vector.Dataset{}, err
	}
	return ds, nil
}

// Labels returns the distinct labels in the order they were first added.
func (s *Store) Labels(ctx context.Context) ([]vector.Label, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label FROM samples GROUP BY label ORDER BY MIN(id)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vector.Label
	for rows.Next() {
		var label int64
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		out = append(out, vector.Label(label))
	}
	return out, rows.Err()
}

// RemoveLabel deletes every sample of label and returns how many were removed.
func (s *Store) RemoveLabel(ctx context.Context, label vector.Label) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM samples WHERE label = ?`, int64(label))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Revision returns a counter that changes whenever samples are added,
// updated or removed. Statistics derived from an older revision are stale.
func (s *Store) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM gallery_revision WHERE id = 1`).Scan(&rev)
	return rev, err
}

// Nearest ranks labels by the Euclidean distance of their nearest sample to
// query, computed inside SQLite with vec_l2. Results match bruteforce.Rank
// over the same gallery.
func (s *Store) Nearest(ctx context.Context, query vector.Vector, k int) ([]index.Match, error) {
	if k <= 0 {
		return []index.Match{}, nil
	}
	d, err := s.Dim(ctx)
	if err != nil {
		return nil, err
	}
	if d == 0 {
		return []index.Match{}, nil
	}
	if err := vector.CheckDimension(query, d); err != nil {
		return nil, fmt.Errorf("gallery: query: %w", err)
	}
	if err := vector.CheckFinite(query); err != nil {
		return nil, fmt.Errorf("gallery: query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT label, MIN(vec_l2(embedding, ?)) AS distance
FROM samples
GROUP BY label
ORDER BY distance ASC, MIN(id) ASC
LIMIT ?`, vector.EncodeEmbedding(query), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]index.Match, 0, k)
	for rows.Next() {
		var label int64
		var distance float64
		if err := rows.Scan(&label, &distance); err != nil {
			return nil, err
		}
		out = append(out, index.Match{Label: vector.Label(label), Distance: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

package provider

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/blockscape/pkg/blocks"
	"github.com/matzehuels/blockscape/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS points (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	block_number  INTEGER NOT NULL,
	post_link     TEXT    NOT NULL DEFAULT '',
	post_content  TEXT    NOT NULL DEFAULT '',
	x             REAL    NOT NULL,
	y             REAL    NOT NULL,
	cluster_id    INTEGER NOT NULL,
	centroid_x    REAL    NOT NULL,
	centroid_y    REAL    NOT NULL,
	summary_short TEXT    NOT NULL DEFAULT '',
	summary_long  TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_points_block ON points(block_number);
`

// Store is a local SQLite snapshot of fetched blocks. It serves ranges
// offline exactly as they were saved.
type Store struct {
	db   *sql.DB
	path string
	src  blocks.PhaseSource
}

// StoreStats summarizes a snapshot.
type StoreStats struct {
	Blocks   int
	Points   int
	MinBlock int
	MaxBlock int
}

// OpenStore opens or creates the snapshot database at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "migrate %s", path)
	}
	return &Store{db: db, path: path, src: blocks.SharedSource}, nil
}

// Name returns "sqlite:<path>".
func (s *Store) Name() string { return "sqlite:" + s.path }

// Save replaces the stored records of every block present in points.
// It returns the number of rows written.
func (s *Store) Save(ctx context.Context, points []blocks.Point) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "begin")
	}
	defer tx.Rollback()

	seen := make(map[int]bool)
	for _, p := range points {
		if seen[p.BlockNumber] {
			continue
		}
		seen[p.BlockNumber] = true
		if _, err := tx.ExecContext(ctx, `DELETE FROM points WHERE block_number = ?`, p.BlockNumber); err != nil {
			return 0, errors.Wrap(errors.ErrCodeInternal, err, "clear block %d", p.BlockNumber)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO points
		(block_number, post_link, post_content, x, y, cluster_id, centroid_x, centroid_y, summary_short, summary_long)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "prepare insert")
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, p.BlockNumber, p.PostLink, p.PostContent, p.X, p.Y,
			p.ClusterID, p.CentroidX, p.CentroidY, p.SummaryShort, p.SummaryLong); err != nil {
			return 0, errors.Wrap(errors.ErrCodeInternal, err, "insert block %d", p.BlockNumber)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "commit")
	}
	return len(points), nil
}

// Fetch returns the saved records of blocks start..end in insertion order
// within each block.
func (s *Store) Fetch(ctx context.Context, start, end int) ([]blocks.Point, error) {
	if err := errors.ValidateBlockRange(start, end); err != nil {
		return nil, err
	}
	return instrument(ctx, "sqlite", start, end, func() ([]blocks.Point, error) {
		rows, err := s.db.QueryContext(ctx, `SELECT
			block_number, post_link, post_content, x, y, cluster_id, centroid_x, centroid_y, summary_short, summary_long
			FROM points WHERE block_number BETWEEN ? AND ? ORDER BY block_number, id`, start, end)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "query blocks %d..%d", start, end)
		}
		defer rows.Close()

		points := []blocks.Point{}
		for rows.Next() {
			var p blocks.Point
			if err := rows.Scan(&p.BlockNumber, &p.PostLink, &p.PostContent, &p.X, &p.Y,
				&p.ClusterID, &p.CentroidX, &p.CentroidY, &p.SummaryShort, &p.SummaryLong); err != nil {
				return nil, errors.Wrap(errors.ErrCodeMalformedPayload, err, "scan point")
			}
			p.BlinkPhase = blocks.RandomPhase(s.src)
			points = append(points, p)
		}
		if err := rows.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "iterate points")
		}
		return points, nil
	})
}

// Stats reports what the snapshot holds. Min and max are zero when empty.
func (s *Store) Stats(ctx context.Context) (StoreStats, error) {
	var st StoreStats
	var lo, hi sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT block_number), COUNT(*), MIN(block_number), MAX(block_number) FROM points`).
		Scan(&st.Blocks, &st.Points, &lo, &hi)
	if err != nil {
		return st, errors.Wrap(errors.ErrCodeInternal, err, "stats")
	}
	st.MinBlock, st.MaxBlock = int(lo.Int64), int(hi.Int64)
	return st, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

package report

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Store keeps score rows across report runs in a SQLite file. A row is
// identified by (train dataset, eval dataset, run, metric); saving it
// again replaces the value.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the store at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "report: open store")
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scores(
			train_dataset TEXT NOT NULL,
			eval_dataset  TEXT NOT NULL,
			run_name      TEXT NOT NULL,
			metric        TEXT NOT NULL,
			value         REAL NOT NULL,
			updated       INTEGER NOT NULL,
			PRIMARY KEY (train_dataset, eval_dataset, run_name, metric)
		)`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "report: create scores table")
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts rows in one transaction.
func (s *Store) Save(ctx context.Context, rows []Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "report: begin")
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scores(train_dataset, eval_dataset, run_name, metric, value, updated)
		VALUES(?,?,?,?,?,?)
		ON CONFLICT(train_dataset, eval_dataset, run_name, metric)
		DO UPDATE SET value = excluded.value, updated = excluded.updated`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "report: prepare")
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.TrainDataset, r.EvalDataset, r.RunName, r.Metric, r.Value, now); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "report: save %s/%s", r.RunName, r.Metric)
		}
	}
	return errors.Wrap(tx.Commit(), "report: commit")
}

// Rows returns the stored rows, all of them when metric is empty,
// ordered by train dataset, eval dataset, run and metric.
func (s *Store) Rows(ctx context.Context, metric string) ([]Row, error) {
	q := "SELECT train_dataset, eval_dataset, run_name, metric, value FROM scores"
	var args []interface{}
	if metric != "" {
		q += " WHERE metric = ?"
		args = append(args, metric)
	}
	q += " ORDER BY train_dataset, eval_dataset, run_name, metric"

	rs, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "report: query")
	}
	defer rs.Close()

	var out []Row
	for rs.Next() {
		var r Row
		if err := rs.Scan(&r.TrainDataset, &r.EvalDataset, &r.RunName, &r.Metric, &r.Value); err != nil {
			return nil, errors.Wrap(err, "report: scan")
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rs.Err(), "report: rows")
}

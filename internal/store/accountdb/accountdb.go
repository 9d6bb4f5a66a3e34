package accountdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"flocksync/internal/model"
)

// DB wraps the SQLite database holding tracked accounts.
type DB struct{ sql *sql.DB }

// ErrNotFound is returned by Get for an unknown account id.
var ErrNotFound = errors.New("account not found")

// RowCountError reports a guarded update that matched a row count other
// than one. Zero means the identity vanished; more than one means the
// store is inconsistent.
type RowCountError struct {
	Op        string
	AccountID string
	Rows      int64
}

func (e *RowCountError) Error() string {
	return fmt.Sprintf("%s: account %s matched %d rows, want 1", e.Op, e.AccountID, e.Rows)
}

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS accounts (
	  id TEXT PRIMARY KEY,
	  twitter_name TEXT NOT NULL DEFAULT '',
	  twitter_id TEXT NOT NULL DEFAULT '',
	  twitter_followers INTEGER NOT NULL DEFAULT 0,
	  tweets INTEGER NOT NULL DEFAULT 0,
	  twitter_pic TEXT NOT NULL DEFAULT '',
	  twitter_status TEXT NOT NULL DEFAULT '',
	  twitter_retweets_recent INTEGER NOT NULL DEFAULT 0,
	  twitter_favorites_recent INTEGER NOT NULL DEFAULT 0,
	  tweets_recent INTEGER NOT NULL DEFAULT 0,
	  twitter_cycle INTEGER NOT NULL DEFAULT 0,
	  twitter_updated INTEGER,
	  tweets_updated INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_accounts_twitter_name ON accounts(twitter_name);
	`)
	return err
}

// LoadEligible returns accounts with a non-empty twitter name,
// projected to identity and the two Twitter keys.
func (d *DB) LoadEligible(ctx context.Context) ([]model.Account, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT id, twitter_id, twitter_name FROM accounts WHERE twitter_name <> '' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.TwitterID, &a.TwitterName); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveProfile updates the account's profile columns and the profile
// timestamp. After a failed fetch only the status and timestamp are
// written; previously synced fields keep their values. Exactly one row
// must match.
func (d *DB) SaveProfile(ctx context.Context, a model.Account) error {
	now := time.Now().UTC().Unix()
	var res sql.Result
	var err error
	if a.Status == model.StatusOK {
		res, err = d.sql.ExecContext(ctx, `UPDATE accounts SET
			twitter_id=?, twitter_name=?, twitter_followers=?, tweets=?, twitter_pic=?, twitter_status=?, twitter_updated=?
			WHERE id=?`,
			a.TwitterID, a.TwitterName, a.Followers, a.Tweets, a.PicURL, a.Status, now, a.ID)
	} else {
		res, err = d.sql.ExecContext(ctx, `UPDATE accounts SET twitter_status=?, twitter_updated=? WHERE id=?`,
			a.Status, now, a.ID)
	}
	if err != nil {
		return err
	}
	return checkOneRow("save_profile", a.ID, res)
}

// SaveStats updates the account's recent-tweet aggregates and the stats
// timestamp. After a failed fetch only the status and timestamp are
// written; previously stored aggregates keep their values. Exactly one
// row must match.
func (d *DB) SaveStats(ctx context.Context, a model.Account) error {
	now := time.Now().UTC().Unix()
	var res sql.Result
	var err error
	if a.Status == model.StatusOK {
		res, err = d.sql.ExecContext(ctx, `UPDATE accounts SET
			twitter_retweets_recent=?, twitter_favorites_recent=?, tweets_recent=?, twitter_cycle=?, twitter_status=?, tweets_updated=?
			WHERE id=?`,
			a.RetweetsRecent, a.FavoritesRecent, a.TweetsRecent, a.Cycle, a.Status, now, a.ID)
	} else {
		res, err = d.sql.ExecContext(ctx, `UPDATE accounts SET twitter_status=?, tweets_updated=? WHERE id=?`,
			a.Status, now, a.ID)
	}
	if err != nil {
		return err
	}
	return checkOneRow("save_stats", a.ID, res)
}

func checkOneRow(op, id string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return &RowCountError{Op: op, AccountID: id, Rows: n}
	}
	return nil
}

// Add inserts a new tracked account for the given handle and returns it.
func (d *DB) Add(ctx context.Context, twitterName string) (model.Account, error) {
	a := model.Account{ID: uuid.NewString(), TwitterName: twitterName}
	_, err := d.sql.ExecContext(ctx, `INSERT INTO accounts(id, twitter_name) VALUES(?,?)`, a.ID, a.TwitterName)
	return a, err
}

// Get returns the full stored account.
func (d *DB) Get(ctx context.Context, id string) (model.Account, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT `+accountCols+` FROM accounts WHERE id=?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

// List returns all stored accounts.
func (d *DB) List(ctx context.Context) ([]model.Account, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT `+accountCols+` FROM accounts ORDER BY twitter_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const accountCols = `id, twitter_id, twitter_name, twitter_followers, tweets, twitter_pic, twitter_status,
	twitter_retweets_recent, twitter_favorites_recent, tweets_recent, twitter_cycle`

type scanner interface{ Scan(dest ...any) error }

func scanAccount(s scanner) (model.Account, error) {
	var a model.Account
	err := s.Scan(&a.ID, &a.TwitterID, &a.TwitterName, &a.Followers, &a.Tweets, &a.PicURL, &a.Status,
		&a.RetweetsRecent, &a.FavoritesRecent, &a.TweetsRecent, &a.Cycle)
	return a, err
}

// Package bunstore is the SQL Store behind the catalog, on uptrace/bun.
//
// SQLite runs through either mattn/go-sqlite3 ("sqlite3", cgo) or
// modernc.org/sqlite ("sqlite", pure Go); PostgreSQL through lib/pq
// ("postgres").
package bunstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/unkn0wn-root/bookcache"
)

const (
	DriverSQLite3  = "sqlite3"  // mattn/go-sqlite3
	DriverSQLite   = "sqlite"   // modernc.org/sqlite
	DriverPostgres = "postgres" // lib/pq
)

type Config struct {
	Driver string
	DSN    string

	// Postgres pool size; SQLite is pinned to a single connection.
	MaxOpenConns int
	// Queries at least this slow are logged at info. 0 disables.
	SlowQuery time.Duration

	Logger bookcache.Logger
	Clock  func() time.Time
}

type Store struct {
	db  *bun.DB
	now func() time.Time
}

var _ bookcache.Store = (*Store)(nil)

func Open(cfg Config) (*Store, error) {
	sqldb, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("bunstore: open %s: %w", cfg.Driver, err)
	}

	var db *bun.DB
	switch cfg.Driver {
	case DriverSQLite3, DriverSQLite:
		// one writer; also keeps ":memory:" databases alive across queries
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres:
		if cfg.MaxOpenConns > 0 {
			sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		_ = sqldb.Close()
		return nil, fmt.Errorf("bunstore: unsupported driver %q", cfg.Driver)
	}

	if cfg.Logger != nil {
		db.AddQueryHook(&queryHook{log: cfg.Logger, slow: cfg.SlowQuery})
	}
	return New(db, cfg.Clock), nil
}

// New wraps an existing bun.DB.
func New(db *bun.DB, clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{db: db, now: clock}
}

func (s *Store) DB() *bun.DB { return s.db }

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*bookRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("bunstore: create books: %w", err)
	}
	if _, err := s.db.NewCreateTable().
		Model((*reviewRow)(nil)).
		IfNotExists().
		ForeignKey(`("book_id") REFERENCES "books" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("bunstore: create reviews: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*reviewRow)(nil)).
		Index("idx_reviews_book_id").
		Column("book_id").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("bunstore: create index: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListBooks(ctx context.Context) ([]bookcache.Book, error) {
	var rows []bookRow
	if err := s.db.NewSelect().
		Model(&rows).
		OrderExpr("b.id ASC").
		Scan(ctx); err != nil && !isNoRows(err) {
		return nil, storeErr("list books", err)
	}
	out := make([]bookcache.Book, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toBook())
	}
	return out, nil
}

func (s *Store) CreateBook(ctx context.Context, in bookcache.NewBook) (bookcache.Book, error) {
	row := &bookRow{
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		PublicationYear: in.PublicationYear,
		CreatedAt:       s.now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return bookcache.Book{}, storeErr("create book", err)
	}
	return row.toBook(), nil
}

func (s *Store) ListReviews(ctx context.Context, bookID int64) ([]bookcache.Review, error) {
	if err := s.requireBook(ctx, s.db, bookID); err != nil {
		return nil, err
	}
	var rows []reviewRow
	if err := s.db.NewSelect().
		Model(&rows).
		Where("r.book_id = ?", bookID).
		OrderExpr("r.created_at DESC, r.id DESC").
		Scan(ctx); err != nil && !isNoRows(err) {
		return nil, storeErr("list reviews", err)
	}
	out := make([]bookcache.Review, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toReview())
	}
	return out, nil
}

func (s *Store) CreateReview(ctx context.Context, bookID int64, in bookcache.NewReview) (bookcache.Review, error) {
	row := &reviewRow{
		BookID:       bookID,
		ReviewerName: in.ReviewerName,
		Rating:       in.Rating,
		ReviewText:   in.ReviewText,
		CreatedAt:    s.now().UTC(),
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.requireBook(ctx, tx, bookID); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return storeErr("create review", err)
		}
		return nil
	})
	if err != nil {
		return bookcache.Review{}, err
	}
	return row.toReview(), nil
}

func (s *Store) requireBook(ctx context.Context, db bun.IDB, bookID int64) error {
	ok, err := db.NewSelect().
		Model((*bookRow)(nil)).
		Where("b.id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return storeErr("lookup book", err)
	}
	if !ok {
		return bookcache.NotFound(bookID)
	}
	return nil
}

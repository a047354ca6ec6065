package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"anx-go/internal/anx"
	"anx-go/internal/catalog/migrations"
	"anx-go/internal/model"
)

// bookColumns is the column list every row scan uses, in tb_books order.
const bookColumns = `id, title, cover_path, file_path, author, create_time, update_time,
	file_md5, last_read_position, reading_percentage, is_deleted, rating, group_id, description`

// SQLiteCatalog implements anx.CatalogStore on the shared database7.db file.
type SQLiteCatalog struct {
	db    *sql.DB
	clock anx.Clock
	path  string
}

// NewSQLiteCatalog opens (or creates) the catalog at path and applies
// pending schema migrations. path can be ":memory:" for tests.
func NewSQLiteCatalog(path string, clock anx.Clock) (*SQLiteCatalog, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating catalog schema: %w", err)
	}

	return &SQLiteCatalog{db: db, clock: clock, path: path}, nil
}

// NewSQLiteCatalogFromDB wraps an existing connection. The caller is
// responsible for schema setup and for closing the connection.
func NewSQLiteCatalogFromDB(db *sql.DB, clock anx.Clock) *SQLiteCatalog {
	return &SQLiteCatalog{db: db, clock: clock}
}

// OpenConnection opens and configures a SQLite connection with the PRAGMAs
// the catalog needs. Exported for tools and tests.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	// Each pooled connection to ":memory:" would get its own database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// The medium may be a remote mount with unpredictable latency; wait for
	// locks instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

func (c *SQLiteCatalog) Insert(book *model.Book) (int64, error) {
	res, err := c.db.Exec(`INSERT INTO tb_books
		(title, cover_path, file_path, author, create_time, update_time, file_md5,
		 last_read_position, reading_percentage, is_deleted, rating, group_id, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		book.Title, book.CoverPath, book.FilePath, book.Author,
		anx.FormatTime(book.CreateTime), anx.FormatTime(book.UpdateTime),
		book.ContentHash, book.LastReadPosition, book.ReadingPercentage,
		book.Rating, book.GroupID, book.Description)
	if err != nil {
		return 0, classify("inserting book", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted id: %w", err)
	}
	return id, nil
}

func (c *SQLiteCatalog) GetByID(id int64) (*model.Book, error) {
	row := c.db.QueryRow(`SELECT `+bookColumns+` FROM tb_books WHERE id = ?`, id)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, classify("finding book by id", err)
	}
	return book, nil
}

func (c *SQLiteCatalog) FindActiveByHash(hash string) (*model.Book, error) {
	row := c.db.QueryRow(`SELECT `+bookColumns+` FROM tb_books WHERE file_md5 = ? AND is_deleted = 0`, hash)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, classify("finding book by hash", err)
	}
	return book, nil
}

func (c *SQLiteCatalog) ActivePathExists(path string) (bool, error) {
	var exists bool
	err := c.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM tb_books WHERE file_path = ? AND is_deleted = 0)`, path).Scan(&exists)
	if err != nil {
		return false, classify("probing file path", err)
	}
	return exists, nil
}

func (c *SQLiteCatalog) ListActive() ([]*model.Book, error) {
	rows, err := c.db.Query(`SELECT ` + bookColumns + ` FROM tb_books WHERE is_deleted = 0 ORDER BY id ASC`)
	if err != nil {
		return nil, classify("listing books", err)
	}
	defer rows.Close()

	var books []*model.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning book row: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("listing books", err)
	}
	return books, nil
}

func (c *SQLiteCatalog) Update(id int64, fields *model.BookUpdate) error {
	set := make([]string, 0, 8)
	args := make([]any, 0, 9)

	appendField := func(column string, value any) {
		set = append(set, column+" = ?")
		args = append(args, value)
	}

	if fields.Title != nil {
		appendField("title", *fields.Title)
	}
	if fields.Author != nil {
		appendField("author", *fields.Author)
	}
	if fields.LastReadPosition != nil {
		appendField("last_read_position", *fields.LastReadPosition)
	}
	if fields.ReadingPercentage != nil {
		appendField("reading_percentage", *fields.ReadingPercentage)
	}
	if fields.Rating != nil {
		appendField("rating", *fields.Rating)
	}
	if fields.GroupID != nil {
		appendField("group_id", *fields.GroupID)
	}
	if fields.Description != nil {
		appendField("description", *fields.Description)
	}
	appendField("update_time", anx.FormatTime(c.clock.Now()))
	args = append(args, id)

	res, err := c.db.Exec(`UPDATE tb_books SET `+strings.Join(set, ", ")+` WHERE id = ? AND is_deleted = 0`, args...)
	if err != nil {
		return classify("updating book", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: book %d", anx.ErrNotFound, id)
	}
	return nil
}

func (c *SQLiteCatalog) SoftDelete(id int64) error {
	// Idempotent: a row that is absent or already deleted matches nothing,
	// which is a no-op success.
	_, err := c.db.Exec(`UPDATE tb_books SET is_deleted = 1, update_time = ? WHERE id = ? AND is_deleted = 0`,
		anx.FormatTime(c.clock.Now()), id)
	if err != nil {
		return classify("soft-deleting book", err)
	}
	return nil
}

func (c *SQLiteCatalog) TotalReadingTime(bookID int64) (int64, error) {
	var total int64
	err := c.db.QueryRow(`SELECT COALESCE(SUM(reading_time), 0) FROM tb_reading_time WHERE book_id = ?`, bookID).Scan(&total)
	if err != nil {
		return 0, classify("aggregating reading time", err)
	}
	return total, nil
}

// Path returns the catalog file path (empty when wrapping an external connection).
func (c *SQLiteCatalog) Path() string {
	return c.path
}

// CheckStatus verifies the catalog schema is up-to-date.
func (c *SQLiteCatalog) CheckStatus() error {
	return migrations.CheckStatus(c.db)
}

func (c *SQLiteCatalog) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanBook reads one tb_books row. Nullable columns (legacy databases leave
// several blank) scan through sql.Null* wrappers.
func scanBook(s scanner) (*model.Book, error) {
	var (
		book       model.Book
		coverPath  sql.NullString
		author     sql.NullString
		createTime sql.NullString
		updateTime sql.NullString
		hash       sql.NullString
		position   sql.NullString
		percentage sql.NullFloat64
		deleted    sql.NullInt64
		rating     sql.NullFloat64
		groupID    sql.NullInt64
		desc       sql.NullString
	)

	err := s.Scan(&book.ID, &book.Title, &coverPath, &book.FilePath, &author,
		&createTime, &updateTime, &hash, &position, &percentage, &deleted,
		&rating, &groupID, &desc)
	if err != nil {
		return nil, err
	}

	book.CoverPath = coverPath.String
	book.Author = author.String
	book.ContentHash = hash.String
	book.LastReadPosition = position.String
	book.ReadingPercentage = percentage.Float64
	book.IsDeleted = deleted.Int64 != 0
	book.Rating = rating.Float64
	book.GroupID = groupID.Int64
	book.Description = desc.String

	if book.CreateTime, err = anx.ParseTime(createTime.String); err != nil {
		return nil, err
	}
	if book.UpdateTime, err = anx.ParseTime(updateTime.String); err != nil {
		return nil, err
	}

	return &book, nil
}

// classify wraps a SQLite failure with the matching sentinel so callers can
// branch with errors.Is without importing the driver.
func classify(op string, err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		switch serr.Code {
		case sqlite3.ErrConstraint:
			return fmt.Errorf("%s: %w: %v", op, anx.ErrConstraintViolation, err)
		case sqlite3.ErrCantOpen, sqlite3.ErrIoErr, sqlite3.ErrBusy, sqlite3.ErrLocked:
			return fmt.Errorf("%s: %w: %v", op, anx.ErrStorageUnavailable, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Compile-time check that SQLiteCatalog implements anx.CatalogStore.
var _ anx.CatalogStore = (*SQLiteCatalog)(nil)

package quizgame

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "github.com/mattn/go-sqlite3"    // driver: sqlite3
	_ "modernc.org/sqlite"             // driver: sqlite
)

// Supported database drivers
const (
	DriverSQLite3  = "sqlite3"  // mattn/go-sqlite3, needs cgo
	DriverSQLite   = "sqlite"   // modernc.org/sqlite, pure Go
	DriverPostgres = "postgres" // pgx stdlib
)

// DB represents a quiz database connection
type DB struct {
	db     *sql.DB
	driver string
}

// OpenDB opens a new database connection
func OpenDB(ctx context.Context, driver, dsn string) (*DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite3, "":
		driver, drvName = DriverSQLite3, "sqlite3"
		if dsn == "" {
			dsn = "./quiz.db"
		}
	case DriverSQLite:
		drvName = "sqlite"
		if dsn == "" {
			dsn = "file:quiz.db?mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx"
		if dsn == "" {
			dsn = "postgres://localhost:5432/quiz?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db, driver: driver}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// Driver returns the driver name the database was opened with
func (db *DB) Driver() string {
	return db.driver
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS quizzes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			author_id INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quizzes_author ON quizzes(author_id)`,
	}
	if db.driver == DriverPostgres {
		queries[0] = `CREATE TABLE IF NOT EXISTS quizzes (
			id BIGSERIAL PRIMARY KEY,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			author_id BIGINT NOT NULL DEFAULT 0,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`
	}

	for _, query := range queries {
		if _, err := db.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// CreateQuiz stores a new quiz and fills in its id and timestamps
func (db *DB) CreateQuiz(ctx context.Context, quiz *QuizItem) error {
	now := time.Now()
	var id int64
	err := db.db.QueryRowContext(ctx,
		db.rebind("INSERT INTO quizzes (question, answer, author_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id"),
		quiz.Question, quiz.Answer, quiz.AuthorID, now.Unix(), now.Unix(),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w: %w", ErrStoreUnavailable, err)
	}
	quiz.ID = id
	quiz.CreatedAt = time.Unix(now.Unix(), 0)
	quiz.UpdatedAt = quiz.CreatedAt
	return nil
}

// GetQuiz retrieves a quiz by ID
func (db *DB) GetQuiz(ctx context.Context, id int64) (*QuizItem, error) {
	row := db.db.QueryRowContext(ctx,
		db.rebind("SELECT id, question, answer, author_id, created_at, updated_at FROM quizzes WHERE id = ?"),
		id,
	)
	quiz, err := scanQuiz(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get quiz: %w: %w", ErrStoreUnavailable, err)
	}
	return quiz, nil
}

// UpdateQuiz overwrites the question and answer of an existing quiz
func (db *DB) UpdateQuiz(ctx context.Context, quiz *QuizItem) error {
	now := time.Now().Unix()
	res, err := db.db.ExecContext(ctx,
		db.rebind("UPDATE quizzes SET question = ?, answer = ?, updated_at = ? WHERE id = ?"),
		quiz.Question, quiz.Answer, now, quiz.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w: %w", ErrStoreUnavailable, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id=%d", ErrNotFound, quiz.ID)
	}
	quiz.UpdatedAt = time.Unix(now, 0)
	return nil
}

// DeleteQuiz removes a quiz
func (db *DB) DeleteQuiz(ctx context.Context, id int64) error {
	res, err := db.db.ExecContext(ctx, db.rebind("DELETE FROM quizzes WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w: %w", ErrStoreUnavailable, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	return nil
}

// CountQuizzes counts the quizzes matching the filter
func (db *DB) CountQuizzes(ctx context.Context, filter Filter) (int, error) {
	where, args := whereClause(filter)
	var count int
	err := db.db.QueryRowContext(ctx, db.rebind("SELECT COUNT(*) FROM quizzes"+where), args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count quizzes: %w: %w", ErrStoreUnavailable, err)
	}
	return count, nil
}

// FindQuizzes retrieves the quizzes matching the filter in id order
func (db *DB) FindQuizzes(ctx context.Context, filter Filter, offset, limit int) ([]QuizItem, error) {
	where, args := whereClause(filter)
	query := "SELECT id, question, answer, author_id, created_at, updated_at FROM quizzes" + where + " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.db.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find quizzes: %w: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var quizzes []QuizItem
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w: %w", ErrStoreUnavailable, err)
		}
		quizzes = append(quizzes, *quiz)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quizzes: %w: %w", ErrStoreUnavailable, err)
	}

	return quizzes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (*QuizItem, error) {
	var quiz QuizItem
	var created, updated int64
	if err := row.Scan(&quiz.ID, &quiz.Question, &quiz.Answer, &quiz.AuthorID, &created, &updated); err != nil {
		return nil, err
	}
	quiz.CreatedAt = time.Unix(created, 0)
	quiz.UpdatedAt = time.Unix(updated, 0)
	return &quiz, nil
}

// whereClause renders the filter with ? placeholders
func whereClause(filter Filter) (string, []any) {
	var conds []string
	var args []any

	if len(filter.ExcludeIDs) > 0 {
		marks := make([]string, len(filter.ExcludeIDs))
		for i, id := range filter.ExcludeIDs {
			marks[i] = "?"
			args = append(args, id)
		}
		conds = append(conds, "id NOT IN ("+strings.Join(marks, ", ")+")")
	}
	if search := strings.Fields(filter.Search); len(search) > 0 {
		conds = append(conds, "LOWER(question) LIKE LOWER(?)")
		args = append(args, "%"+strings.Join(search, "%")+"%")
	}
	if filter.AuthorID != 0 {
		conds = append(conds, "author_id = ?")
		args = append(args, filter.AuthorID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// rebind turns ? placeholders into $n for postgres
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

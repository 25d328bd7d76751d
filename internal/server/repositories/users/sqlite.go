package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteSchema creates the users table for the sqlite backend.
var SQLiteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              TEXT PRIMARY KEY,
		email           TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		full_name       TEXT NOT NULL DEFAULT '',
		role            TEXT NOT NULL DEFAULT 'user',
		created_at      TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS users_created_at_idx ON users (created_at, id);`,
}

// sqliteTimeLayout is fixed width so text order matches time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// SQLiteRepository is the single-file variant of PostgresRepository.
// Timestamps are kept as UTC text in sqliteTimeLayout.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, email, passwordHash, fullName string) (*models.Account, error) {
	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         models.RoleUser,
		CreatedAt:    now(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, hashed_password, full_name, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		`,
		account.ID, account.Email, account.PasswordHash, account.FullName, account.Role,
		account.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *SQLiteRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, hashed_password, full_name, role, created_at
		FROM users
		WHERE email = ?
		`,
		email,
	)

	account, err := scanSQLiteAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, account *models.Account) (*models.Account, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET full_name = ?, hashed_password = ?, role = ?
		WHERE id = ?
		`,
		account.FullName, account.PasswordHash, account.Role, account.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}

	saved := *account
	return &saved, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, account *models.Account) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, account.ID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]*models.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, hashed_password, full_name, role, created_at
		FROM users
		ORDER BY created_at, id
		`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Account
	for rows.Next() {
		account, err := scanSQLiteAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteAccount(row rowScanner) (*models.Account, error) {
	account := &models.Account{}
	var createdAt string
	if err := row.Scan(&account.ID, &account.Email, &account.PasswordHash,
		&account.FullName, &account.Role, &createdAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	account.CreatedAt = t
	return account, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		strings.Contains(se.Error(), "UNIQUE constraint failed")
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/history-museum/internal/database"
	"github.com/iliyamo/history-museum/internal/model"
)

// SQLStore keeps accounts in MySQL or SQLite.  Each mutation runs in its own
// transaction; email uniqueness is backed by a UNIQUE index.
type SQLStore struct {
	DB      *sql.DB
	Dialect database.Dialect
}

func NewSQLStore(db *sql.DB, d database.Dialect) *SQLStore { return &SQLStore{DB: db, Dialect: d} }

const userColumns = "id,email,password_hash,first_name,last_name,patronymic,created_at"

func (s *SQLStore) CreateUser(ctx context.Context, u model.User) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?)",
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Patronymic, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

func (s *SQLStore) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return s.getUser(ctx, s.DB, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.getUser(ctx, s.DB, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

func (s *SQLStore) UpdateUser(ctx context.Context, id string, patch UserPatch) (model.User, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	u, err := s.getUser(ctx, tx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1"+s.forUpdate(), id)
	if err != nil {
		return model.User{}, err
	}
	if patch.Email != nil && *patch.Email != u.Email {
		var n int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE email=? AND id<>?", *patch.Email, id).Scan(&n); err != nil {
			return model.User{}, err
		}
		if n > 0 {
			return model.User{}, ErrEmailExists
		}
	}
	u = applyPatch(u, patch)
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET email=?, first_name=?, last_name=?, patronymic=? WHERE id=?",
		u.Email, u.FirstName, u.LastName, u.Patronymic, id); err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (s *SQLStore) Favorites(ctx context.Context, userID string) (model.Favorites, error) {
	out := model.Favorites{Halls: []string{}, Exhibits: []string{}}
	rows, err := s.DB.QueryContext(ctx,
		"SELECT kind, item_id FROM favorites WHERE user_id=? ORDER BY id", userID)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind, item string
		if err := rows.Scan(&kind, &item); err != nil {
			return out, err
		}
		switch FavoriteKind(kind) {
		case FavoriteHall:
			out.Halls = append(out.Halls, item)
		case FavoriteExhibit:
			out.Exhibits = append(out.Exhibits, item)
		}
	}
	return out, rows.Err()
}

func (s *SQLStore) ToggleFavorite(ctx context.Context, userID string, kind FavoriteKind, itemID string) (bool, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	// Lock the owning user row so concurrent toggles of one user queue up.
	var locked string
	if err := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE id=?"+s.forUpdate(), userID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	res, err := tx.ExecContext(ctx,
		"DELETE FROM favorites WHERE user_id=? AND kind=? AND item_id=?", userID, string(kind), itemID)
	if err != nil {
		return false, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	isFavorite := removed == 0
	if isFavorite {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO favorites (user_id, kind, item_id) VALUES (?,?,?)", userID, string(kind), itemID); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return isFavorite, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) getUser(ctx context.Context, q queryer, query string, arg any) (model.User, error) {
	var u model.User
	err := q.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Patronymic, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// forUpdate returns the row-locking suffix for dialects that support it.
// SQLite runs with a single connection, which already serializes writers.
func (s *SQLStore) forUpdate() string {
	if s.Dialect == database.MySQL {
		return " FOR UPDATE"
	}
	return ""
}

// isUniqueViolation recognises duplicate key errors from both drivers:
// MySQL error 1062 and SQLite's "UNIQUE constraint failed".
func isUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const userColumns = `id, first_name, last_name, email, password_hash, is_admin`

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.IsAdmin)
	return u, err
}

func (s *Store) getUser(ctx context.Context, q querier, where string, arg any) (*models.User, error) {
	u, err := scanUser(s.queryRow(ctx, q, `SELECT `+userColumns+` FROM app_user WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, s.DB, `email = ?`, NormalizeEmail(email))
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, s.DB, `id = ?`, id)
}

// CreateUser inserts u, whose PasswordHash must already be set.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	if _, err := s.GetUserByEmail(ctx, u.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	id, err := s.insertID(ctx, s.DB, `INSERT INTO app_user (first_name, last_name, email, password_hash, is_admin)
		VALUES (?, ?, ?, ?, ?)`, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.IsAdmin)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.ID = id
	return nil
}

func (s *Store) GetAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.query(ctx, s.DB, `SELECT `+userColumns+` FROM app_user ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	return s.countAdmins(ctx, s.DB)
}

func (s *Store) countAdmins(ctx context.Context, q querier) (int, error) {
	var n int
	if err := s.queryRow(ctx, q, `SELECT COUNT(*) FROM app_user WHERE is_admin = ?`, true).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateUser saves names, email and the admin flag, plus the password when
// PasswordHash is set, in one transaction. Demoting the last administrator
// fails with ErrLastAdmin.
func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getUser(ctx, tx, `id = ?`, u.ID)
		if err != nil {
			return err
		}
		if current.IsAdmin && !u.IsAdmin {
			if err := s.ensureOtherAdmin(ctx, tx); err != nil {
				return err
			}
		}
		if current.Email != u.Email {
			if other, err := s.getUser(ctx, tx, `email = ?`, u.Email); err == nil && other.ID != u.ID {
				return ErrEmailTaken
			} else if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
		}
		_, err = s.exec(ctx, tx, `UPDATE app_user SET first_name = ?, last_name = ?, email = ?, is_admin = ? WHERE id = ?`,
			u.FirstName, u.LastName, u.Email, u.IsAdmin, u.ID)
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		if err != nil {
			return fmt.Errorf("failed to update user %d: %w", u.ID, err)
		}
		if u.PasswordHash != "" {
			if _, err := s.exec(ctx, tx, `UPDATE app_user SET password_hash = ? WHERE id = ?`, u.PasswordHash, u.ID); err != nil {
				return fmt.Errorf("failed to update password for user %d: %w", u.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	res, err := s.exec(ctx, s.DB, `UPDATE app_user SET password_hash = ? WHERE id = ?`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password for user %d: %w", userID, err)
	}
	return affectedOne(res)
}

func (s *Store) UserHasOrders(ctx context.Context, userID int64) (bool, error) {
	return s.userHasOrders(ctx, s.DB, userID)
}

func (s *Store) userHasOrders(ctx context.Context, q querier, userID int64) (bool, error) {
	var one int
	err := s.queryRow(ctx, q, `SELECT 1 FROM orders WHERE user_id = ? LIMIT 1`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// DeleteUser removes a user and their contact messages. The last
// administrator and users with orders cannot be deleted.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		u, err := s.getUser(ctx, tx, `id = ?`, userID)
		if err != nil {
			return err
		}
		if u.IsAdmin {
			if err := s.ensureOtherAdmin(ctx, tx); err != nil {
				return err
			}
		}
		hasOrders, err := s.userHasOrders(ctx, tx, userID)
		if err != nil {
			return err
		}
		if hasOrders {
			return ErrUserHasOrders
		}

		if _, err := s.exec(ctx, tx, `DELETE FROM contact_message WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("failed to delete messages of user %d: %w", userID, err)
		}
		res, err := s.exec(ctx, tx, `DELETE FROM app_user WHERE id = ?`, userID)
		if err != nil {
			return fmt.Errorf("failed to delete user %d: %w", userID, err)
		}
		return affectedOne(res)
	})
}

// ensureOtherAdmin fails with ErrLastAdmin unless a second administrator
// exists. On PostgreSQL the admin rows stay locked until tx ends, so two
// concurrent removals cannot both see the other admin. SQLite allows a
// single writer, so the second transaction fails to upgrade its lock instead.
func (s *Store) ensureOtherAdmin(ctx context.Context, tx *sql.Tx) error {
	query := `SELECT id FROM app_user WHERE is_admin = ?`
	if s.driver == "pgx" {
		query += ` FOR UPDATE`
	}
	rows, err := s.query(ctx, tx, query, true)
	if err != nil {
		return err
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

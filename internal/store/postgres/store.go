package postgres

import (
	db_models "chatbox-backend/internal/models"
	"chatbox-backend/internal/logging"
	"chatbox-backend/internal/store"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

// uniqueViolation is the PostgreSQL error code for unique_violation.
const uniqueViolation = "23505"

// DB is the subset of *pgxpool.Pool used by the store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db  DB
	log *slog.Logger
}

func NewPostgresStore(db DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, log: logging.Component(logger, "postgres_store")}
}

const userColumns = `id, name, email, password_hash, google_id, has_password, avatar, is_verified, created_at, updated_at`

func scanUser(row pgx.Row) (*db_models.User, error) {
	user := &db_models.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.GoogleID,
		&user.HasPassword,
		&user.Avatar,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *PostgresStore) getUser(ctx context.Context, where string, arg any) (*db_models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` = $1`

	user, err := scanUser(s.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		s.log.ErrorContext(ctx, "query user failed", "by", where, "error", err)
		return nil, fmt.Errorf("database error fetching user by %s: %w", where, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
// Returns store.ErrNotFound if the user does not exist.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*db_models.User, error) {
	return s.getUser(ctx, "email", email)
}

// GetUserByID retrieves a user by primary key.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*db_models.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByGoogleID retrieves a user by the Google subject identifier.
func (s *PostgresStore) GetUserByGoogleID(ctx context.Context, googleID string) (*db_models.User, error) {
	return s.getUser(ctx, "google_id", googleID)
}

// CreateUser inserts a new user record into the database.
// A duplicate email or Google id yields store.ErrConflict.
func (s *PostgresStore) CreateUser(ctx context.Context, user *db_models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, google_id, has_password, avatar, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := s.db.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.GoogleID,
		user.HasPassword,
		user.Avatar,
		user.IsVerified,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			s.log.WarnContext(ctx, "create user conflict", "email", user.Email, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("creating user %s: %w", user.Email, store.ErrConflict)
		}
		s.log.ErrorContext(ctx, "create user failed", "email", user.Email, "error", err)
		return fmt.Errorf("database error creating user: %w", err)
	}

	s.log.InfoContext(ctx, "user created", "user_id", user.ID)
	return nil
}

// LinkGoogleAccount attaches a Google subject id to an existing user that has
// none yet. A missing or already linked user is ErrNotFound.
func (s *PostgresStore) LinkGoogleAccount(ctx context.Context, userID uuid.UUID, googleID string) (*db_models.User, error) {
	query := `
		UPDATE users SET google_id = $2, updated_at = NOW()
		WHERE id = $1 AND google_id IS NULL
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRow(ctx, query, userID, googleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("linking google account: %w", store.ErrConflict)
		}
		return nil, fmt.Errorf("database error linking google account: %w", err)
	}
	return user, nil
}

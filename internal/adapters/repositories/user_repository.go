package repositories

import (
	"context"
	"time"

	"dispatch-service/internal/domain"

	"github.com/jmoiron/sqlx"
)

type PostgresUserRepository struct{ DB *sqlx.DB }

func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

type userRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (s *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var row userRow
	if err := s.DB.GetContext(ctx, &row, `
		SELECT id, email, name, role, password_hash, created_at
		FROM users
		WHERE lower(email) = lower($1)`, email); err != nil {
		return domain.User{}, mapErr("get user by email", err)
	}
	return domain.User(row), nil
}

// CreateUser returns ports.ErrConflict when the email is already registered.
func (s *PostgresUserRepository) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO users (id, email, name, role, password_hash, created_at)
		VALUES (:id, :email, :name, :role, :password_hash, :created_at)`,
		userRow(u),
	); err != nil {
		return domain.User{}, mapErr("create user", err)
	}
	return u, nil
}

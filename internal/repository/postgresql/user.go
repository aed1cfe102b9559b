package postgresql

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/db"
)

type UserRepo struct {
	db db.DB
}

type User struct {
	Username string `db:"username"`
	Password string `db:"password"`
	Role     string `db:"role"`
}

func NewUserRepo(db db.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) CreateUser(ctx context.Context, username, password, role string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		"INSERT INTO users (username, password, role) VALUES ($1, $2, $3)",
		username, string(hashedPassword), role)
	return err
}

// ValidateUser checks the credentials and returns the stored role on
// success.
func (r *UserRepo) ValidateUser(ctx context.Context, username, password string) (string, error) {
	var hashedPassword, role string
	err := r.db.ExecQueryRow(ctx,
		"SELECT password, role FROM users WHERE username = $1", username).Scan(&hashedPassword, &role)
	if err != nil {
		return "", errors.New("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}
	return role, nil
}

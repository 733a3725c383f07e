package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims identify the operator behind a request.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies HS256 bearer tokens for dashboard users.
type AuthService struct {
	Users  ports.UserRepository
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (a *AuthService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := a.Users.GetUserByEmail(ctx, email)
	if errors.Is(err, ports.ErrNotFound) {
		return "", domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.User{}, fmt.Errorf("login: get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.User{}, ErrInvalidCredentials
	}

	token, err := a.Issue(user)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("login: %w", err)
	}
	return token, user, nil
}

// Register creates a user with a bcrypt-hashed password.
func (a *AuthService) Register(ctx context.Context, name, email, password, role string) (domain.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("register: %w", err)
	}
	if role == "" {
		role = domain.RoleManager
	}

	user, err := a.Users.CreateUser(ctx, domain.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    a.now(),
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("register: create user: %w", err)
	}
	return user, nil
}

func (a *AuthService) Issue(user domain.User) (string, error) {
	if len(a.Secret) == 0 {
		return "", errors.New("issue token: signing secret is empty")
	}

	now := a.now()
	ttl := a.TTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(a.Secret)
	if err != nil {
		return "", fmt.Errorf("issue token: sign: %w", err)
	}
	return signed, nil
}

// Parse validates the signature, algorithm and expiry of a bearer token.
func (a *AuthService) Parse(tokenString string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return a.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return Claims{}, errors.New("parse token: token is not valid")
	}
	return claims, nil
}

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying the authenticated operator.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFrom returns the authenticated operator's claims, if any.
func ClaimsFrom(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(Claims)
	return c, ok
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (a *AuthService) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cookstove_tracker/internal/models"
	"cookstove_tracker/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = time.Hour

// AuthService handles user auth logic
type AuthService struct {
	users repository.UserRepo
	cfg   AuthConfig
	now   func() time.Time
}

func NewAuthService(users repository.UserRepo, cfg AuthConfig) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, cfg: cfg, now: time.Now}
}

// SignUp hashes password and creates a new user with role "user".
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (int, error) {
	return s.CreateUser(ctx, name, email, password, models.RoleUser)
}

type newUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,notblank,min=6"`
	Role     string `json:"role" validate:"oneof=user admin"`
}

// CreateUser is SignUp with an explicit role; used to bootstrap admins.
func (s *AuthService) CreateUser(ctx context.Context, name, email, password, role string) (int, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := checkStruct(newUser{Name: name, Email: email, Password: password, Role: role}); err != nil {
		return 0, err
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return 0, err
	}

	id, err := s.users.Create(ctx, models.User{Name: name, Email: email, PasswordHash: hash, Role: role})
	if errors.Is(err, repository.ErrDuplicate) {
		return 0, newError(ErrConflict, "user with this email already exists")
	}
	return id, err
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// GenerateToken validates credentials and returns a JWT with the signed-in user.
func (s *AuthService) GenerateToken(ctx context.Context, email, password string) (string, models.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return "", models.User{}, newError(ErrUnauthorized, "invalid credentials")
	}
	if err != nil {
		return "", models.User{}, err
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", models.User{}, newError(ErrUnauthorized, "invalid credentials")
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return "", models.User{}, err
	}
	return token, u, nil
}

// ParseToken parses JWT and returns userID
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SigningKey), nil
	})
	if err != nil {
		return 0, newError(ErrUnauthorized, "invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, newError(ErrUnauthorized, "invalid or expired token")
	}

	return claims.UserID, nil
}

// GetUser loads the current state of a user, role included.
func (s *AuthService) GetUser(ctx context.Context, id int) (models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, newError(ErrNotFound, "user not found")
	}
	return u, err
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) issueToken(userID int) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	return token.SignedString([]byte(s.cfg.SigningKey))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package usecase

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ponyo877/flychat/server/domain"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 100
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

var (
	ErrBadCredentials  = errors.New("invalid username or password")
	ErrInvalidUsername = errors.New("username must be 3-30 characters of letters, numbers and underscores")
	ErrInvalidPassword = errors.New("password must be 6-100 characters")
	ErrUserExists      = errors.New("username already exists")
)

type credentialClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// AuthUsecase issues credential tokens on register/login and resolves them
// back to identities for the connection handshake.
type AuthUsecase struct {
	repo     Repository
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthUsecase(repo Repository, secret []byte, tokenTTL time.Duration) *AuthUsecase {
	return &AuthUsecase{
		repo:     repo,
		secret:   secret,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

func (u *AuthUsecase) Register(name, password string) (domain.UserIdentity, string, error) {
	if !usernamePattern.MatchString(name) {
		return domain.UserIdentity{}, "", ErrInvalidUsername
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return domain.UserIdentity{}, "", ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserIdentity{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	identity, err := u.repo.CreateUser(name, string(hash))
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return domain.UserIdentity{}, "", ErrUserExists
		}
		return domain.UserIdentity{}, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := u.issueToken(identity.ID)
	if err != nil {
		return domain.UserIdentity{}, "", err
	}
	return identity, token, nil
}

func (u *AuthUsecase) Login(name, password string) (domain.UserIdentity, string, error) {
	identity, hash, err := u.repo.GetUserByName(name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.UserIdentity{}, "", ErrBadCredentials
		}
		return domain.UserIdentity{}, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return domain.UserIdentity{}, "", ErrBadCredentials
	}

	token, err := u.issueToken(identity.ID)
	if err != nil {
		return domain.UserIdentity{}, "", err
	}
	return identity, token, nil
}

// Verify resolves a raw credential token to a user identity. It is the
// identity binder for inbound connections: it must succeed before a
// connection is registered or allowed any room operation.
func (u *AuthUsecase) Verify(rawToken string) (domain.UserIdentity, error) {
	if rawToken == "" {
		return domain.UserIdentity{}, domain.ErrAuthInvalid
	}

	var claims credentialClaims
	_, err := jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return u.secret, nil
	}, jwt.WithTimeFunc(u.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.UserIdentity{}, domain.ErrAuthExpired
		}
		return domain.UserIdentity{}, domain.ErrAuthInvalid
	}
	if claims.UserID == "" {
		return domain.UserIdentity{}, domain.ErrAuthInvalid
	}

	identity, err := u.repo.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.UserIdentity{}, domain.ErrAuthUnknownUser
		}
		return domain.UserIdentity{}, fmt.Errorf("failed to resolve user %s: %w", claims.UserID, err)
	}
	return identity, nil
}

func (u *AuthUsecase) issueToken(userID string) (string, error) {
	now := u.now()
	claims := credentialClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.tokenTTL)),
		},
		UserID: userID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

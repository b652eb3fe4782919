package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"eden_passes_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// OperatorRole is the role claim carried by front-desk tokens.
const OperatorRole = "operator"

// --- Data Transfer Objects (DTOs) ---

// LoginRequest DTO
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse DTO
type AuthResponse struct {
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// --- AuthService Interface ---
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
}

// --- authService Implementation ---
type authService struct {
	username     string
	passwordHash []byte
	tokens       *utils.TokenManager
}

// NewAuthService authenticates the single configured operator account.
func NewAuthService(username, passwordHash string, tokens *utils.TokenManager) AuthService {
	return &authService{
		username:     username,
		passwordHash: []byte(passwordHash),
		tokens:       tokens,
	}
}

// Login checks the operator credentials and issues an access token.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	// The hash is compared even for an unknown username so both failures take as long.
	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.username)) == 1
	err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, fmt.Errorf("failed to verify operator password: %w", err)
	}
	if !usernameOK || err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(s.username, OperatorRole)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &AuthResponse{
		Username:    s.username,
		Role:        OperatorRole,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// HashPassword returns the bcrypt hash stored in OPERATOR_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/agendamaconica/calendar-api/internal/config"
	"github.com/agendamaconica/calendar-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const TokenDuration = 24 * time.Hour

// Actor identifies the authenticated user for visibility and policy checks.
type Actor struct {
	ID         uint
	Privileged bool
}

// AuthInput is embedded by every protected operation input.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Session cookie"`
}

type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type LoginInput struct {
	Body struct {
		Username string `json:"username" required:"true"`
		Password string `json:"password" required:"true"`
	}
}

type LoginOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Message string `json:"message"`
	}
}

func (h *AuthHandler) HandleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	var user models.User
	if err := h.db.Where("username = ?", input.Body.Username).First(&user).Error; err != nil {
		return nil, huma.Error401Unauthorized("Invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Body.Password)); err != nil {
		return nil, huma.Error401Unauthorized("Invalid username or password")
	}

	token, err := h.GenerateToken(user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	res := &LoginOutput{
		SetCookie: http.Cookie{
			Name:     "auth_token",
			Value:    token,
			Expires:  time.Now().Add(TokenDuration),
			HttpOnly: true,
			Path:     "/",
		},
	}
	res.Body.Message = "Welcome " + user.Username
	return res, nil
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// Authorize resolves the auth_token cookie into an Actor.
func (h *AuthHandler) Authorize(ctx context.Context, cookieHeader string) (Actor, error) {
	userID, err := h.parseToken(cookieHeader)
	if err != nil {
		return Actor{}, huma.Error401Unauthorized("Unauthorized: " + err.Error())
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return Actor{}, huma.Error401Unauthorized("Unauthorized: unknown user")
	}

	return Actor{ID: user.ID, Privileged: user.Privileged}, nil
}

func (h *AuthHandler) parseToken(cookieHeader string) (uint, error) {
	req := http.Request{Header: http.Header{"Cookie": []string{cookieHeader}}}
	cookie, err := req.Cookie("auth_token")
	if err != nil {
		return 0, errors.New("no token found")
	}

	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("invalid token claims")
	}
	return uint(userIDFloat), nil
}

type MeInput struct {
	AuthInput
}

type MeOutput struct {
	Body struct {
		ID         uint   `json:"id"`
		Username   string `json:"username"`
		Email      string `json:"email"`
		FullName   string `json:"full_name"`
		Privileged bool   `json:"privileged"`
	}
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *MeInput) (*MeOutput, error) {
	actor, err := h.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := h.db.First(&user, actor.ID).Error; err != nil {
		return nil, huma.Error404NotFound("User not found")
	}

	res := &MeOutput{}
	res.Body.ID = user.ID
	res.Body.Username = user.Username
	res.Body.Email = user.Email
	res.Body.FullName = user.FullName()
	res.Body.Privileged = user.Privileged
	return res, nil
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTMiddleware rejects requests without a valid session token and renews
// tokens that are past the halfway point of their lifetime.
func (h *AuthHandler) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("auth_token")
		if err != nil {
			if err == http.ErrNoCookie {
				http.Error(w, "Unauthorized: No token found", http.StatusUnauthorized)
				return
			}
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(h.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			http.Error(w, "Unauthorized: Invalid token claims", http.StatusUnauthorized)
			return
		}
		userID := uint(userIDFloat)

		// Sliding session: refresh token if it's more than halfway through its duration
		if exp, ok := claims["exp"].(float64); ok {
			remaining := time.Until(time.Unix(int64(exp), 0))
			if remaining < TokenDuration/2 {
				newToken, err := h.GenerateToken(userID)
				if err == nil {
					http.SetCookie(w, &http.Cookie{
						Name:     "auth_token",
						Value:    newToken,
						Expires:  time.Now().Add(TokenDuration),
						HttpOnly: true,
						Path:     "/",
					})
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}

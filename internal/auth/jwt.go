package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/theswapneil/school-management-system/internal/model"
)

// ErrInvalidToken covers signature mismatch, malformed payload, expiry, and
// claims that fail role validation. Callers only branch on this; the
// underlying cause is wrapped for logs.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity snapshot embedded in every access token. Values are
// copied at issuance and never refreshed from the store; a role change only
// takes effect at the next login.
type Claims struct {
	UserID    string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	jwt.RegisteredClaims
}

func NewAccessToken(secret, issuer string, ttl time.Duration, user model.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		FirstName: user.FirstName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken is a purely structural check: signature, expiry, and a valid
// role value. It never consults the identity store.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.Join(ErrInvalidToken, jwt.ErrTokenInvalidClaims)
	}
	if _, err := model.ParseRole(claims.Role); err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return claims, nil
}

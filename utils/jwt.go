package utils

import (
	"errors"
	"os"
	"time"

	"pcohire/config"
	"pcohire/models"

	"github.com/golang-jwt/jwt"
)

var errNoSecret = errors.New("jwt secret is not configured")

func secretKey() ([]byte, error) {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		return nil, errNoSecret
	}
	return []byte(secret), nil
}

// GenerateToken creates a signed JWT for subject acting as role. Token issuance
// belongs to the auth service; this exists for tooling and tests.
func GenerateToken(subject, role string, duration time.Duration) (string, error) {
	key, err := secretKey()
	if err != nil {
		return "", err
	}
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	key, err := secretKey()
	if err != nil {
		return nil, err
	}
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
}

// CallerFromToken extracts the subject and role from a valid JWT token string.
func CallerFromToken(tokenString string) (models.Caller, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return models.Caller{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Caller{}, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return models.Caller{}, errors.New("token does not contain a valid 'sub' claim")
	}
	role, _ := claims["role"].(string)
	switch role {
	case models.RoleDriver, models.RolePartner, models.RoleAdmin, models.RoleOperations:
	default:
		return models.Caller{}, errors.New("token does not contain a known 'role' claim")
	}

	return models.Caller{ID: sub, Role: role}, nil
}

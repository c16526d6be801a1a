package services

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService issues the tokens used by the auth flow. Validation lives in
// utils/jwt_utils.go so the middleware does not depend on this package.
type JWTService struct{}

func (s *JWTService) sign(userID, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"exp":    time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateAuthToken creates the 24-hour access token handed out at login
// and after email verification.
func (s *JWTService) GenerateAuthToken(userID string) (string, error) {
	return s.sign(userID, os.Getenv("JWT_SECRET"), 24*time.Hour)
}

// GenerateShortAccessToken creates the 15-minute access token handed out
// in exchange for a refresh token.
func (s *JWTService) GenerateShortAccessToken(userID string) (string, error) {
	return s.sign(userID, os.Getenv("JWT_SECRET"), 15*time.Minute)
}

// GenerateRefreshToken creates the long-lived refresh token. It is signed
// with a separate secret and persisted on the user record, so a stolen
// access secret cannot mint refresh tokens.
func (s *JWTService) GenerateRefreshToken(userID string) (string, error) {
	return s.sign(userID, os.Getenv("REFRESH_TOKEN_SECRET"), 7*24*time.Hour)
}

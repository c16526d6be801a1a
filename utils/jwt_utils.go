package utils

import (
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// ValidateToken parses and verifies an access token and returns the user ID
// stored in its claims.
func ValidateToken(tokenStr string) (string, error) {
	return validateWithSecret(tokenStr, os.Getenv("JWT_SECRET"))
}

// ValidateRefreshToken verifies a refresh token against the refresh secret.
func ValidateRefreshToken(tokenStr string) (string, error) {
	return validateWithSecret(tokenStr, os.Getenv("REFRESH_TOKEN_SECRET"))
}

func validateWithSecret(tokenStr, secret string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("userId claim missing")
	}

	return userID, nil
}

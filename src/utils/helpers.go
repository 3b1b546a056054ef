package utils

import (
	"bookstore/src/config"
	"bookstore/src/models"
	"bookstore/src/types"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

// GenerateJWT signs a session token for the user. The subject is the user id.
func GenerateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := &types.Claims{
		Email: user.Email,
		Role:  string(user.Role),
		State: user.State,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret())
}

// GenerateOTP returns a zero-padded 6 digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func IsProd() bool {
	return config.APIEnv() == string(types.Production)
}

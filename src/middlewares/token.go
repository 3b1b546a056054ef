package middlewares

import (
	"bookstore/src/config"
	"bookstore/src/types"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingToken = errors.New("missing bearer token")

// ParseToken validates a "Bearer <jwt>" header value and returns its claims.
func ParseToken(header string) (*types.Claims, error) {
	reqToken, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(reqToken) == "" {
		return nil, ErrMissingToken
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return config.JWTSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}

// VerifyWebhookSignature rejects webhook calls whose verif-hash header does not match the
// configured secret hash. With no secret hash configured every call passes.
func VerifyWebhookSignature(ctx *gin.Context) {
	secret := config.FlutterwaveSecretHash()
	if secret == "" {
		return
	}
	signature := ctx.GetHeader(config.FLUTTERWAVE_SIGNATURE_HEADER)
	if subtle.ConstantTimeCompare([]byte(signature), []byte(secret)) != 1 {
		err := errors.New("invalid webhook signature")
		log.Printf("Check failed: %s\n", err.Error())
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
}

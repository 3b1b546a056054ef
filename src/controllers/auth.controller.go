package controllers

import (
	"bookstore/src/common"
	"bookstore/src/config"
	"bookstore/src/db"
	"bookstore/src/lib"
	"bookstore/src/lib/mailer"
	"bookstore/src/models"
	"bookstore/src/types"
	"bookstore/src/utils"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errOTPUnavailable = errors.New("login codes are unavailable: redis is not configured")

func otpStore() *lib.OTPStore {
	rd := lib.GetRedisClient()
	if rd == nil {
		return nil
	}
	return lib.NewOTPStore(rd, config.DEFAULT_OTP_TTL)
}

// AuthRequestOTP stores a fresh login code for the email and mails it.
func AuthRequestOTP(ctx *gin.Context, m common.Mailer) (status int, err error) {
	var body types.RequestOTPRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return http.StatusBadRequest, err
	}
	store := otpStore()
	if store == nil {
		return http.StatusServiceUnavailable, errOTPUnavailable
	}
	code, err := utils.GenerateOTP()
	if err != nil {
		return http.StatusInternalServerError, err
	}
	if err := store.Save(ctx, body.Email, code); err != nil {
		log.Printf("[redis] Error saving login code: %s\n", err.Error())
		return http.StatusInternalServerError, err
	}
	if err := m.Send(mailer.LoginCode(body.Email, code)); err != nil {
		log.Printf("Error sending login code to %s: %s\n", body.Email, err.Error())
		return http.StatusInternalServerError, err
	}
	return http.StatusOK, nil
}

// AuthVerifyOTP exchanges a valid login code for a token. Unknown emails are registered as
// customers and must supply a state.
func AuthVerifyOTP(ctx *gin.Context) (token *string, status int, err error) {
	var body types.VerifyOTPRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	store := otpStore()
	if store == nil {
		return nil, http.StatusServiceUnavailable, errOTPUnavailable
	}
	stored, err := store.Get(ctx, body.Email)
	if errors.Is(err, lib.ErrOTPNotFound) {
		return nil, http.StatusUnauthorized, errors.New("invalid or expired code")
	}
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(body.Code)) != 1 {
		failures, err := store.RecordFailure(ctx, body.Email)
		if err != nil {
			log.Printf("[redis] Error counting failed login attempt: %s\n", err.Error())
		}
		if err != nil || failures >= config.DEFAULT_OTP_MAX_ATTEMPTS {
			log.Printf("[auth] Revoking login code for %s after %d failed attempts\n", body.Email, failures)
			if err := store.Delete(ctx, body.Email); err != nil {
				log.Printf("[redis] Error deleting login code: %s\n", err.Error())
			}
		}
		return nil, http.StatusUnauthorized, errors.New("invalid or expired code")
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	now := time.Now()
	var user models.User
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("LOWER(email) = ?", email).
			First(&user).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if body.State == "" {
				return common.ErrValidation
			}
			user = models.User{
				Name:          body.Name,
				Email:         email,
				Phone:         body.Phone,
				Role:          types.ROLE_CUSTOMER,
				State:         body.State,
				EmailVerified: true,
				VerifiedAt:    &now,
			}
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}
		if user.EmailVerified {
			return nil
		}
		user.EmailVerified = true
		user.VerifiedAt = &now
		return tx.
			Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{"email_verified": true, "verified_at": now}).
			Error
	})
	if errors.Is(err, common.ErrValidation) {
		return nil, http.StatusBadRequest, errors.New("state is required for new accounts")
	}
	if err != nil {
		log.Printf("Error verifying login for %s: %s\n", email, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	if err := store.Delete(ctx, body.Email); err != nil {
		log.Printf("[redis] Error deleting login code: %s\n", err.Error())
	}

	jwt, err := utils.GenerateJWT(&user)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return &jwt, http.StatusOK, nil
}

package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"emoji-backend/internal/callback"
	"emoji-backend/internal/models"
	"emoji-backend/internal/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const EmojiIDKey = "emoji_id"

// WebhookAuth authenticates a provider callback before the handler runs:
// the id query parameter must be a UUID and token must be the callback
// token issued for that id and stage.
func WebhookAuth(signer *callback.Signer, stage pipeline.Stage) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Query("id")
		if idStr == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: "missing id"})
			c.Abort()
			return
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: "id must be a UUID"})
			c.Abort()
			return
		}

		if err := signer.Verify(stage, id, c.Query("token")); err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid callback token",
				Message: strings.TrimPrefix(err.Error(), models.ErrInvalidRequest.Error()+": "),
			})
			c.Abort()
			return
		}

		c.Set(EmojiIDKey, id)
		c.Next()
	}
}

const formTokenPurpose = "emoji-form"

// FormTokenVerifier validates the anti-automation token the creation form
// obtains from the token issuer. With no secret configured every token is
// accepted.
type FormTokenVerifier struct {
	secret []byte
}

func NewFormTokenVerifier(secret string) *FormTokenVerifier {
	return &FormTokenVerifier{secret: []byte(secret)}
}

type formClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (v *FormTokenVerifier) VerifyFormToken(tokenString string) error {
	if len(v.secret) == 0 {
		return nil
	}

	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return fmt.Errorf("%w: missing token", models.ErrInvalidInput)
	}

	token, err := jwt.ParseWithClaims(tokenString, &formClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		var errorMsg string
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			errorMsg = "token signature is invalid"
		case errors.Is(err, jwt.ErrTokenExpired):
			errorMsg = "token has expired"
		case errors.Is(err, jwt.ErrTokenMalformed):
			errorMsg = "token is malformed"
		default:
			errorMsg = err.Error()
		}
		return fmt.Errorf("%w: %s", models.ErrInvalidInput, errorMsg)
	}

	claims, ok := token.Claims.(*formClaims)
	if !ok || !token.Valid {
		return fmt.Errorf("%w: invalid token", models.ErrInvalidInput)
	}
	if claims.Purpose != formTokenPurpose {
		return fmt.Errorf("%w: token was not issued for the emoji form", models.ErrInvalidInput)
	}
	return nil
}

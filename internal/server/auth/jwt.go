package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the authenticated user's id.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64
}

func GenerateToken(userID int64, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GetUserIDFromToken(tokenString string, secretKey []byte) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, common.ErrTokenExpired
		}
		return 0, common.ErrInvalidToken
	}

	if !token.Valid {
		return 0, common.ErrInvalidToken
	}

	return claims.UserID, nil
}

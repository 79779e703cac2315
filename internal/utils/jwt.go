package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const cartTokenIssuer = "encore-cart"

var ErrInvalidCartToken = errors.New("invalid cart token")

type cartClaims struct {
	CartID string `json:"cart_id"`
	jwt.RegisteredClaims
}

// GenerateCartToken signs a session token that carries the cart ID.
func GenerateCartToken(secret string, cartID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &cartClaims{
		CartID: cartID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cartTokenIssuer,
			Subject:   cartID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseCartToken validates the token and returns the cart ID it carries.
func ParseCartToken(secret, tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &cartClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cartTokenIssuer),
	)
	if err != nil {
		return uuid.Nil, err
	}

	if claims, ok := token.Claims.(*cartClaims); ok && token.Valid {
		id, err := uuid.Parse(claims.CartID)
		if err != nil {
			return uuid.Nil, ErrInvalidCartToken
		}
		return id, nil
	}

	return uuid.Nil, ErrInvalidCartToken
}

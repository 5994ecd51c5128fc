// Package auth issues and checks the bearer tokens of the HTTP API. Tokens
// are HS256 JWTs signed with a secret generated at process start, so they do
// not survive a restart.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const DefaultValidity = 12 * time.Hour

// Claims are the registered claims plus the identity's email.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

func GenerateToken(email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Email: email,
	})

	return token.SignedString(secretKey)
}

// GetEmailFromToken validates tokenString and returns its email claim.
// Expired tokens yield common.ErrTokenExpired, anything else that fails
// validation yields common.ErrInvalidToken.
func GetEmailFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Email == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Email, nil
}

// Issuer binds a per-process secret and a token lifetime.
type Issuer struct {
	secret   []byte
	validity time.Duration
}

func NewIssuer(validity time.Duration) *Issuer {
	return NewIssuerWithSecret(common.GenerateRandByteArray(32), validity)
}

func NewIssuerWithSecret(secret []byte, validity time.Duration) *Issuer {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Issuer{secret: secret, validity: validity}
}

func (i *Issuer) Issue(email string) (string, error) {
	return GenerateToken(email, i.secret, i.validity)
}

func (i *Issuer) Email(token string) (string, error) {
	return GetEmailFromToken(token, i.secret)
}

// Package auth provides password hashing and JWT issuance/verification for
// the dispatch server.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/iqube/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: the user's id and email plus the standard
// registered claims (exp, iat).
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Token is a signed bearer token together with its absolute expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies HS256 tokens with a symmetric secret.
type TokenIssuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewTokenIssuer returns an issuer whose tokens live for validity.
func NewTokenIssuer(secret string, validity time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), validity: validity, now: time.Now}
}

// Issue signs a token for the user expiring validity from now.
func (i *TokenIssuer) Issue(userID int64, email string) (Token, error) {
	now := i.now()
	expiresAt := now.Add(i.validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return Token{}, err
	}

	return Token{Value: tokenString, ExpiresAt: expiresAt}, nil
}

// Verify checks the signature and expiry of tokenString. It fails with
// common.ErrTokenExpired past the expiry and common.ErrInvalidToken for
// anything else (bad signature, wrong algorithm, garbage input).
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, errors.Join(common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

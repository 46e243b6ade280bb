package utils

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret   = []byte("integra-dev-secret")
	jwtIssuer   = "integra"
	jwtSecretMu sync.RWMutex
)

// IdentityClaims carries the identity asserted by the sign-in provider.
// The subject is the provider's stable user id.
type IdentityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func SetJWTSecret(secret string) {
	jwtSecretMu.Lock()
	defer jwtSecretMu.Unlock()
	jwtSecret = []byte(secret)
}

func SetJWTIssuer(issuer string) {
	jwtSecretMu.Lock()
	defer jwtSecretMu.Unlock()
	jwtIssuer = issuer
}

func signingKey() ([]byte, string) {
	jwtSecretMu.RLock()
	defer jwtSecretMu.RUnlock()
	return jwtSecret, jwtIssuer
}

// GenerateIdentityToken signs an HS256 token for subject and email.
func GenerateIdentityToken(subject, email string, expireHours int) (string, error) {
	key, issuer := signingKey()
	now := time.Now()
	claims := IdentityClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ParseIdentityToken verifies the signature, expiry and issuer of a token.
func ParseIdentityToken(tokenString string) (*IdentityClaims, error) {
	key, issuer := signingKey()
	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, errors.New("token is missing subject or email")
	}
	return claims, nil
}

package auth

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	jwtKey     []byte
	jwtKeyOnce sync.Once
)

// signingKey reads JWT_KEY on first use, after the dotenv bootstrap has run,
// and caches it for the process lifetime.
func signingKey() []byte {
	jwtKeyOnce.Do(func() {
		jwtKey = []byte(os.Getenv("JWT_KEY"))
	})
	return jwtKey
}

type JWTClaims struct {
	AccountID string `json:"account_id"` // Hex object id of the accounts document
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"` // Needed for RBAC on protected endpoints
	jwt.RegisteredClaims
}

func GenerateJWT(accountID, name, email, role string, duration time.Duration) (string, error) {
	claims := &JWTClaims{
		AccountID: accountID,
		Name:      name,
		Email:     email,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey())
}

func ValidateJWT(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return signingKey(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("token expired")
	}
	return claims, nil
}

func GetJWTKey() []byte {
	return signingKey()
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenLifetime  = time.Hour
	refreshTokenLifetime = 7 * 24 * time.Hour

	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "carga-docente-dev-secret"
	}
	return []byte(secret)
}

func generate(userID, role, tokenType string, lifetime time.Duration) (string, error) {
	claims := &Claims{
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// GenerateToken crea el token de acceso para un usuario.
func GenerateToken(userID, role string) (string, error) {
	return generate(userID, role, TokenAccess, accessTokenLifetime)
}

// GenerateRefreshToken crea el token de refresco, de vida más larga.
func GenerateRefreshToken(userID, role string) (string, error) {
	return generate(userID, role, TokenRefresh, refreshTokenLifetime)
}

func parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("método de firma no soportado")
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token inválido")
	}
	return claims, nil
}

// VerifyToken valida firma y expiración de un token de acceso.
func VerifyToken(tokenString string) (*Claims, error) {
	claims, err := parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenAccess {
		return nil, errors.New("el token no es de acceso")
	}
	return claims, nil
}

// VerifyRefreshToken valida un token y exige que sea de refresco.
func VerifyRefreshToken(tokenString string) (*Claims, error) {
	claims, err := parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenRefresh {
		return nil, errors.New("el token no es de refresco")
	}
	return claims, nil
}

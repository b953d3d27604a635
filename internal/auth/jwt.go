package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The signing key is set once at startup from the JWT_SECRET config value.
var jwtSecretKey = []byte("A_VERY_SECURE_SECRET_KEY_REPLACE_LATER")

// SetSecret installs the signing key. Must be called from main() before the
// router starts accepting requests.
func SetSecret(secret string) {
	if secret != "" {
		jwtSecretKey = []byte(secret)
	}
}

// Claims is the session payload carried by every token. The role claim is
// authoritative for authorization: handlers trust the signature instead of
// re-checking the database on every request.
type Claims struct {
	UserID int64
	Role   string
	Name   string
	Email  string
}

// GenerateToken creates a signed JWT for the given user.
func GenerateToken(userID int64, role, name, email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"role":  role,
		"name":  name,
		"email": email,
		"exp":   time.Now().Add(time.Hour * 72).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecretKey)
}

// ValidateToken parses and validates a token string and returns its claims.
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything other than our HMAC method.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecretKey, nil
	})
	if err != nil {
		return nil, err // expired, malformed, or bad signature
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	// "sub" arrives as float64 (JSON's number type).
	sub, ok := mapClaims["sub"].(float64)
	if !ok {
		return nil, errors.New("invalid subject claim")
	}
	role, ok := mapClaims["role"].(string)
	if !ok {
		return nil, errors.New("invalid role claim")
	}

	claims := &Claims{
		UserID: int64(sub),
		Role:   role,
	}
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	return claims, nil
}

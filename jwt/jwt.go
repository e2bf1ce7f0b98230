package jwt

import (
	"crypto/rsa"
	"errors"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidClaims = errors.New("token claims are missing the user id")

// Keys signs and verifies RS256 login tokens.
type Keys struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

// loadPrivateKey reads a PEM encoded RSA private key.
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(keyBytes)
	if err != nil {
		return nil, err
	}

	return key, nil
}

// loadPublicKey reads a PEM encoded RSA public key.
func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM(keyBytes)
	if err != nil {
		return nil, err
	}

	return key, nil
}

// LoadKeys reads the PEM encoded key pair once at startup.
func LoadKeys(privateKeyPath, publicKeyPath string) (*Keys, error) {
	privateKey, err := loadPrivateKey(privateKeyPath)
	if err != nil {
		return nil, err
	}
	publicKey, err := loadPublicKey(publicKeyPath)
	if err != nil {
		return nil, err
	}
	return &Keys{private: privateKey, public: publicKey}, nil
}

func NewKeys(privateKey *rsa.PrivateKey) *Keys {
	return &Keys{private: privateKey, public: &privateKey.PublicKey}
}

// GenerateToken signs a token for userID that expires at expTime (unix seconds).
func (k *Keys) GenerateToken(userID uint, expTime int64) (string, error) {
	token := jwt.New(jwt.SigningMethodRS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["userID"] = userID
	claims["exp"] = expTime
	claims["jti"] = uuid.NewString()

	tokenString, err := token.SignedString(k.private)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyToken checks the signature and expiry and returns the user id.
func (k *Keys) VerifyToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return k.public, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return 0, err
	}

	if !token.Valid {
		return 0, jwt.ErrTokenSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidClaims
	}
	userID, ok := claims["userID"].(float64)
	if !ok || userID <= 0 {
		return 0, ErrInvalidClaims
	}

	return uint(userID), nil
}

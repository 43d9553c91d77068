package middleware

import (
	"crypto/rsa"
	"crypto/subtle"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apierrors "github.com/vicuna-trace/ledger/internal/api/shared/errors"
	"github.com/vicuna-trace/ledger/internal/logger"
)

type contextKey string

const (
	AUTH_TYPE_KEY    contextKey = "auth_type"
	AUTH_SUBJECT_KEY contextKey = "auth_subject"
	JWT_CLAIMS_KEY   contextKey = "jwt_claims"

	AUTH_TYPE_JWT    = "jwt"
	AUTH_TYPE_APIKEY = "apikey"

	// jwtLeeway absorbs clock skew between the identity provider and this service
	jwtLeeway = 30 * time.Second
)

// AuthConfig holds authentication configuration for operator routes
type AuthConfig struct {
	JWTPublicKey string // RSA public key in PEM format
	APIKeys      []string
}

// AuthResult holds the result of authentication.
// AuthSubject identifies the operator: the JWT subject, or a fingerprint of the API key.
type AuthResult struct {
	Success     bool
	AuthType    string
	Claims      *jwt.RegisteredClaims
	AuthSubject string
	Error       error
}

type apiKey struct {
	secret  []byte
	subject string
}

type authenticator struct {
	publicKey *rsa.PublicKey
	keyErr    error
	apiKeys   []apiKey
	parser    *jwt.Parser
}

func newAuthenticator(cfg AuthConfig) *authenticator {
	a := &authenticator{
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
			jwt.WithLeeway(jwtLeeway),
		),
	}

	if cfg.JWTPublicKey == "" {
		a.keyErr = errors.New("JWT public key not configured")
	} else if a.publicKey, a.keyErr = parseRSAPublicKey(cfg.JWTPublicKey); a.keyErr != nil {
		a.keyErr = fmt.Errorf("failed to parse RSA public key: %w", a.keyErr)
	}

	for _, key := range cfg.APIKeys {
		if key == "" {
			continue
		}
		a.apiKeys = append(a.apiKeys, apiKey{secret: []byte(key), subject: apiKeySubject(key)})
	}

	return a
}

// apiKeySubject names an API key caller without exposing the key itself
func apiKeySubject(key string) string {
	return "apikey:" + hex.EncodeToString(crypto.Keccak256([]byte(key))[:6])
}

// Authenticate validates the Authorization header against cfg
func Authenticate(authHeader string, cfg AuthConfig) AuthResult {
	return newAuthenticator(cfg).authenticate(authHeader)
}

func (a *authenticator) authenticate(authHeader string) AuthResult {
	if authHeader == "" {
		return AuthResult{Error: errors.New("missing Authorization header")}
	}

	scheme, credentials, ok := strings.Cut(authHeader, " ")
	if !ok {
		return AuthResult{Error: errors.New("invalid Authorization header format")}
	}

	switch strings.ToLower(scheme) {
	case "bearer":
		claims, err := a.validateJWT(credentials)
		if err != nil {
			return AuthResult{Error: err}
		}
		return AuthResult{Success: true, AuthType: AUTH_TYPE_JWT, Claims: claims, AuthSubject: claims.Subject}

	case "apikey":
		subject, err := a.validateAPIKey(credentials)
		if err != nil {
			return AuthResult{Error: err}
		}
		return AuthResult{Success: true, AuthType: AUTH_TYPE_APIKEY, AuthSubject: subject}

	default:
		return AuthResult{Error: fmt.Errorf("unsupported authorization type: %s", scheme)}
	}
}

// Auth guards operator routes. It accepts RS256/384/512 JWTs carrying a subject
// or one of the configured API keys, and stores the operator subject for later middleware.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	a := newAuthenticator(cfg)

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		result := a.authenticate(c.GetHeader("Authorization"))

		if !result.Success {
			logger.WarnCtx(ctx, "Authentication failed",
				zap.Error(result.Error),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierrors.NewUnauthorizedError("Authentication failed", result.Error.Error()))
			return
		}

		c.Set(AUTH_TYPE_KEY, result.AuthType)
		c.Set(AUTH_SUBJECT_KEY, result.AuthSubject)
		if result.Claims != nil {
			c.Set(JWT_CLAIMS_KEY, result.Claims)
		}

		logger.DebugCtx(ctx, "Operator authenticated",
			zap.String("auth_type", result.AuthType),
			zap.String("subject", result.AuthSubject),
			zap.String("path", c.Request.URL.Path),
		)

		c.Next()
	}
}

func (a *authenticator) validateJWT(tokenString string) (*jwt.RegisteredClaims, error) {
	if a.keyErr != nil {
		return nil, a.keyErr
	}

	claims := &jwt.RegisteredClaims{}
	_, err := a.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	// mint attempts are attributed to the operator
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}

func parseRSAPublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return x509.ParsePKCS1PublicKey(block.Bytes)
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an RSA key")
	}

	return rsaKey, nil
}

func (a *authenticator) validateAPIKey(key string) (string, error) {
	if len(a.apiKeys) == 0 {
		return "", errors.New("no API keys configured")
	}

	// compare against every key so timing does not reveal which prefix matched
	subject := ""
	for _, k := range a.apiKeys {
		if subtle.ConstantTimeCompare(k.secret, []byte(key)) == 1 {
			subject = k.subject
		}
	}
	if subject == "" {
		return "", errors.New("invalid API key")
	}

	return subject, nil
}

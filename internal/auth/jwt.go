// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/medassist/internal/config"
	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/middleware"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	tokenTypeAccess = "access"
)

// JWTManager signs access tokens for logged-in accounts and verifies them
// on the way back in. The token subject is the numeric user id.
type JWTManager struct {
	signingKey jwk.Key
	verifyKey  jwk.Key
	keySet     jwk.Set
	keyID      string
	config     config.JWTConfig
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	if cfg.GenerateKeys {
		_, err := os.Stat(cfg.PrivateKeyPath)
		if errors.Is(err, fs.ErrNotExist) {
			if err := GenerateKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath); err != nil {
				return nil, fmt.Errorf("generate key pair: %w", err)
			}
		}
	}

	signingKey, keyID, err := loadSigningKey(cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}

	verifyKey, err := signingKey.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	if err := verifyKey.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, fmt.Errorf("set key usage: %w", err)
	}

	keySet := jwk.NewSet()
	if err := keySet.AddKey(verifyKey); err != nil {
		return nil, fmt.Errorf("add key to set: %w", err)
	}

	return &JWTManager{
		signingKey: signingKey,
		verifyKey:  verifyKey,
		keySet:     keySet,
		keyID:      keyID,
		config:     cfg,
	}, nil
}

// loadSigningKey reads the PEM private key and names it by its RFC 7638
// thumbprint, so the key id survives restarts.
func loadSigningKey(path string) (jwk.Key, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read private key: %w", err)
	}

	key, err := jwk.ParseKey(raw, jwk.WithPEM(true))
	if err != nil {
		return nil, "", fmt.Errorf("parse private key: %w", err)
	}

	thumb, err := key.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, "", fmt.Errorf("key thumbprint: %w", err)
	}
	keyID := base64.RawURLEncoding.EncodeToString(thumb)[:16]

	if err := key.Set(jwk.KeyIDKey, keyID); err != nil {
		return nil, "", fmt.Errorf("set key id: %w", err)
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.ES256()); err != nil {
		return nil, "", fmt.Errorf("set algorithm: %w", err)
	}

	return key, keyID, nil
}

// GenerateKeyPair writes a fresh P-256 key pair as PEM files.
func GenerateKeyPair(privateKeyPath, publicKeyPath string) error {
	if err := os.MkdirAll(filepath.Dir(privateKeyPath), 0o700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	private, err := jwk.Import(ecKey)
	if err != nil {
		return fmt.Errorf("import private key: %w", err)
	}

	public, err := private.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}

	if err := writePEM(privateKeyPath, private, 0o600); err != nil {
		return err
	}
	//nolint:gosec // G306: public key is meant to be readable
	return writePEM(publicKeyPath, public, 0o644)
}

func writePEM(path string, key jwk.Key, perm os.FileMode) error {
	encoded, err := jwk.Pem(key)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, encoded, perm); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// IssueAccessToken implements user.TokenIssuer.
func (m *JWTManager) IssueAccessToken(
	userID int64,
	isAdmin bool,
) (string, time.Duration, error) {
	role := RoleUser
	if isAdmin {
		role = RoleAdmin
	}

	now := time.Now()
	ttl := m.config.AccessTokenExpire

	token, err := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(strconv.FormatInt(userID, 10)).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(ttl)).
		Claim("role", role).
		Claim("type", tokenTypeAccess).
		Build()
	if err != nil {
		return "", 0, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), m.signingKey))
	if err != nil {
		return "", 0, fmt.Errorf("sign token: %w", err)
	}

	return string(signed), ttl, nil
}

// VerifyAccessToken implements middleware.TokenVerifier. Any failure other
// than expiry is reported as an invalid token.
func (m *JWTManager) VerifyAccessToken(
	_ context.Context,
	raw string,
) (*middleware.AccessTokenClaims, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.ES256(), m.verifyKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
	)
	if err != nil {
		if expired(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var tokenType, role string
	if err := token.Get("type", &tokenType); err != nil || tokenType != tokenTypeAccess {
		return nil, fmt.Errorf("verify token: wrong type: %w", core.ErrTokenInvalid)
	}
	if err := token.Get("role", &role); err != nil {
		return nil, fmt.Errorf("verify token: missing role: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok {
		return nil, fmt.Errorf("verify token: missing subject: %w", core.ErrTokenInvalid)
	}
	if _, err := core.ParseID(subject); err != nil {
		return nil, fmt.Errorf("verify token: subject %q: %w", subject, core.ErrTokenInvalid)
	}

	return &middleware.AccessTokenClaims{
		UserID: subject,
		Role:   role,
	}, nil
}

func expired(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "exp") && strings.Contains(msg, "not satisfied")
}

// JWKSHandler publishes the verification key.
func (m *JWTManager) JWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=3600")

		if err := json.NewEncoder(w).Encode(m.keySet); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}

func (m *JWTManager) KeyID() string {
	return m.keyID
}

package middleware

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// cacheEntry stores verified JWT claims keyed by a digest of the token
type cacheEntry struct {
	claims jwt.MapClaims
	exp    int64
}

// AuthMiddleware validates RS256 tokens issued by the identity provider
// The sub claim identifies the owner of every reading and medication
type AuthMiddleware struct {
	publicKey   *rsa.PublicKey
	cache       sync.Map
	janitorStop chan bool
	logger      *zap.Logger
}

const CacheCleanupInterval = 10 * time.Minute

// NewAuthMiddleware creates a new JWT authentication middleware
func NewAuthMiddleware(publicKey *rsa.PublicKey, logger *zap.Logger) *AuthMiddleware {
	m := &AuthMiddleware{
		publicKey:   publicKey,
		janitorStop: make(chan bool),
		logger:      logger,
	}

	go m.startJanitor(CacheCleanupInterval)

	return m
}

// Context keys for storing caller information
type contextKey string

const OwnerIDKey contextKey = "ownerID"

// GetClaimsFromCacheOrParse returns verified claims for the token and its JTI
// Only a token that was fully verified before can be served from the cache
func (m *AuthMiddleware) GetClaimsFromCacheOrParse(tokenString string) (jwt.MapClaims, string, error) {
	parser := new(jwt.Parser)
	unverifiedToken, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, "", err
	}

	claims, ok := unverifiedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "", errors.New("invalid token claims")
	}

	jti, _ := claims["jti"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, "", errors.New("missing expiration claim")
	}
	if time.Now().After(exp.Time) {
		return nil, "", errors.New("token expired")
	}

	key := cacheKey(tokenString)
	if entry, ok := m.cache.Load(key); ok {
		cached := entry.(cacheEntry)
		if time.Now().Unix() < cached.exp {
			return cached.claims, jti, nil
		}
		m.cache.Delete(key)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.publicKey, nil
	})
	if err != nil {
		return nil, "", err
	}
	if !token.Valid {
		return nil, "", jwt.ErrSignatureInvalid
	}

	verifiedClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "", errors.New("invalid token claims")
	}

	m.cache.Store(key, cacheEntry{claims: verifiedClaims, exp: exp.Unix()})

	return verifiedClaims, jti, nil
}

func cacheKey(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(sum[:])
}

// RequireAuth validates the bearer token and stores the owner id in the request context
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Debug("missing authorization header", zap.String("path", r.URL.Path))
			writeUnauthorized(w, "missing authorization header")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			m.logger.Debug("invalid authorization header format", zap.String("path", r.URL.Path))
			writeUnauthorized(w, "invalid authorization header")
			return
		}

		claims, jti, err := m.GetClaimsFromCacheOrParse(tokenString)
		if err != nil {
			m.logger.Info("token validation failed", zap.Error(err))
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ownerID, ok := claims["sub"].(string)
		if !ok || ownerID == "" {
			m.logger.Info("token missing sub claim", zap.String("jti", jti))
			writeUnauthorized(w, "invalid token: missing subject")
			return
		}

		m.logger.Debug("token validated",
			zap.String("owner_id", ownerID),
			zap.String("jti", jti),
			zap.Duration("duration", time.Since(start)))

		next(w, r.WithContext(WithOwnerID(r.Context(), ownerID)))
	}
}

type unauthorizedResponse struct {
	Error string `json:"error"`
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(unauthorizedResponse{Error: message})
}

// startJanitor periodically removes expired cache entries
func (m *AuthMiddleware) startJanitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if deleted := m.purgeExpired(time.Now().Unix()); deleted > 0 {
				m.logger.Debug("token cache janitor purged entries", zap.Int("deleted", deleted))
			}
		case <-m.janitorStop:
			return
		}
	}
}

func (m *AuthMiddleware) purgeExpired(now int64) int {
	deleted := 0
	m.cache.Range(func(key, value interface{}) bool {
		if entry, ok := value.(cacheEntry); ok && now >= entry.exp {
			m.cache.Delete(key)
			deleted++
		}
		return true
	})
	return deleted
}

// Stop stops the background janitor
func (m *AuthMiddleware) Stop() {
	close(m.janitorStop)
}

// GetOwnerID extracts the owner id from request context
func GetOwnerID(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(OwnerIDKey).(string)
	return ownerID, ok && ownerID != ""
}

// WithOwnerID stores ownerID under OwnerIDKey. RequireAuth uses it after verifying
// a token, and it is the contract handlers rely on through GetOwnerID.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, OwnerIDKey, ownerID)
}

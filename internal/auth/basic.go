package auth

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const realm = `Basic realm="Admin"`

// Config is the optional credential pair gating the editor.
type Config struct {
	User string
	Pass string
}

// ConfigFromEnv reads BASIC_AUTH_USER and BASIC_AUTH_PASS.
func ConfigFromEnv() Config {
	return Config{User: os.Getenv("BASIC_AUTH_USER"), Pass: os.Getenv("BASIC_AUTH_PASS")}
}

// Enabled reports whether both values are set. With either missing the
// gate stays open.
func (c Config) Enabled() bool {
	return c.User != "" && c.Pass != ""
}

// PasswordHasher defines minimal hashing interface.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// IsBcryptHash reports whether s looks like a bcrypt hash ($2a$, $2b$, $2y$).
func IsBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

// ConstantTimeCompare helper.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Check validates a presented credential pair against cfg. A bcrypt
// hash in cfg.Pass is verified with bcrypt; anything else is compared as
// plain text.
func (c Config) Check(user, pass string) bool {
	userOK := ConstantTimeCompare(user, c.User)
	var passOK bool
	if IsBcryptHash(c.Pass) {
		passOK = BcryptHasher{}.Verify(c.Pass, pass)
	} else {
		passOK = ConstantTimeCompare(pass, c.Pass)
	}
	return userOK && passOK
}

// Middleware returns a gate requiring HTTP Basic credentials on every
// request. When cfg is not enabled it passes requests through untouched.
func Middleware(cfg Config, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	if !cfg.Enabled() {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !cfg.Check(user, pass) {
				if ok {
					logger.Debugw("basic auth rejected", "user", user, "remote", r.RemoteAddr)
				}
				w.Header().Set("WWW-Authenticate", realm)
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

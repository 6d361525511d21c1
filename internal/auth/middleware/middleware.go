package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-games/internal/rbac"
)

const issuer = "mindengage-games"

var ErrBadCredentials = errors.New("invalid credentials")

// Account is a password login. Pupils and parents come in as guests.
type Account struct {
	Username string
	PassHash string // bcrypt
	Role     string
}

type AuthService struct {
	hmac     []byte
	ttl      time.Duration
	accounts map[string]Account
	now      func() time.Time
}

func NewAuthService(secret string, accounts ...Account) *AuthService {
	a := &AuthService{hmac: []byte(secret), ttl: 8 * time.Hour, accounts: map[string]Account{}, now: time.Now}
	for _, acc := range accounts {
		a.accounts[acc.Username] = acc
	}
	return a
}

type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"` // teacher | parent | pupil | admin
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role string) (string, error) {
	now := a.now()
	claims := &Claims{
		Sub:  sub,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Sub == "" {
		return nil, errors.New("invalid token")
	}
	return c, nil
}

// Login checks a password against the account's bcrypt hash.
func (a *AuthService) Login(username, password string) (Account, error) {
	acc, ok := a.accounts[username]
	if !ok {
		return Account{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PassHash), []byte(password)) != nil {
		return Account{}, ErrBadCredentials
	}
	return acc, nil
}

var validate = validator.New()

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(a *AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username" validate:"required,max=128"`
			Password string `json:"password" validate:"required,max=256"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		acc, err := a.Login(req.Username, req.Password)
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(acc.Username, acc.Role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "role": acc.Role})
	}
}

// JWTMiddleware verifies the bearer token and puts its subject and role
// in the request context for rbac.Require.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			c, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := WithSubject(r.Context(), c.Sub)
			ctx = rbac.WithRole(ctx, c.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

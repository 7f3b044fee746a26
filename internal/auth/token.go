package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/survey-auth/internal/domain"
)

// TokenTTL is the lifetime of every issued or refreshed token. It is not
// configurable.
const TokenTTL = 30 * time.Minute

var (
	// ErrTokenExpired is returned when the exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signatures, malformed payloads and foreign families.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrEmptySecret is returned when a manager is built without a signing secret.
	ErrEmptySecret = errors.New("signing secret is empty")
)

// VerificationError reports why a token of a given family was rejected.
type VerificationError struct {
	Kind  domain.PrincipalKind
	Err   error
	Cause error
}

func (e *VerificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s token: %v: %v", e.Kind, e.Err, e.Cause)
	}
	return fmt.Sprintf("%s token: %v", e.Kind, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Claims describes the JWT payload shared by both token families.
type Claims struct {
	UserID string `json:"userid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Token is an encoded session token together with its validity window.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Option customises a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source used for minting and verification.
func WithClock(now func() time.Time) Option {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// TokenManager handles issuing and validating JWT tokens of one family.
type TokenManager struct {
	kind   domain.PrincipalKind
	secret []byte
	now    func() time.Time
}

// NewTokenManager builds a manager for kind signed with secret.
func NewTokenManager(kind domain.PrincipalKind, secret string, opts ...Option) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("%s family: %w", kind, ErrEmptySecret)
	}
	tm := &TokenManager{kind: kind, secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm, nil
}

// Kind returns the principal kind this manager signs for.
func (tm *TokenManager) Kind() domain.PrincipalKind {
	return tm.kind
}

// Encode signs a token for subjectID expiring TokenTTL from now.
func (tm *TokenManager) Encode(subjectID, role string) (Token, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(TokenTTL)
	claims := &Claims{
		UserID: subjectID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{string(tm.kind)},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: tokenString, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Decode validates tokenStr and returns its claims.
func (tm *TokenManager) Decode(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(string(tm.kind)),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &VerificationError{Kind: tm.kind, Err: ErrTokenExpired, Cause: err}
		}
		return nil, &VerificationError{Kind: tm.kind, Err: ErrTokenInvalid, Cause: err}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, &VerificationError{Kind: tm.kind, Err: ErrTokenInvalid}
	}
	return claims, nil
}

// Keyring holds the two process-wide token managers.
type Keyring struct {
	user  *TokenManager
	judge *TokenManager
}

// NewKeyring builds managers for both families. Either secret missing is fatal.
func NewKeyring(userSecret, judgeSecret string, opts ...Option) (*Keyring, error) {
	user, err := NewTokenManager(domain.PrincipalUser, userSecret, opts...)
	if err != nil {
		return nil, err
	}
	judge, err := NewTokenManager(domain.PrincipalJudge, judgeSecret, opts...)
	if err != nil {
		return nil, err
	}
	return &Keyring{user: user, judge: judge}, nil
}

// User returns the user-family manager.
func (k *Keyring) User() *TokenManager {
	return k.user
}

// Judge returns the judge-family manager.
func (k *Keyring) Judge() *TokenManager {
	return k.judge
}

// For returns the manager for kind, or nil for an unknown kind.
func (k *Keyring) For(kind domain.PrincipalKind) *TokenManager {
	switch kind {
	case domain.PrincipalUser:
		return k.user
	case domain.PrincipalJudge:
		return k.judge
	default:
		return nil
	}
}

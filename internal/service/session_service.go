package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/survey-auth/internal/auth"
	"github.com/spec-kit/survey-auth/internal/domain"
	"github.com/spec-kit/survey-auth/internal/events"
	"github.com/spec-kit/survey-auth/internal/observability"
	"github.com/spec-kit/survey-auth/internal/ratelimit"
	"github.com/spec-kit/survey-auth/internal/repository"
)

const (
	opLogin   = "login"
	opRefresh = "refresh"
	opLogout  = "logout"
)

// SessionResult is a minted session packaged for the client.
type SessionResult struct {
	Session *domain.Session
	Cookie  auth.CookieDirective
}

// SessionService issues, refreshes and ends stateless session tokens for
// registered users and judges.
type SessionService struct {
	users        repository.UserRepository
	keys         *auth.Keyring
	limiter      *ratelimit.Limiter
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
	cookieSecure bool
	bcryptCost   int
	newJudgeID   func() string
	compare      func(hashed, plain string) error

	decoyOnce sync.Once
	decoyHash string
}

// SessionDependencies encapsulates collaborators of the session service.
// Limiter, Dispatcher, Metrics and Logger are optional.
type SessionDependencies struct {
	UserRepo     repository.UserRepository
	Keys         *auth.Keyring
	Limiter      *ratelimit.Limiter
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	CookieSecure bool
	BcryptCost   int
}

// NewSessionService builds the service.
func NewSessionService(deps SessionDependencies) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cost := deps.BcryptCost
	if cost <= 0 {
		cost = auth.DefaultBcryptCost
	}
	return &SessionService{
		users:        deps.UserRepo,
		keys:         deps.Keys,
		limiter:      deps.Limiter,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       logger,
		cookieSecure: deps.CookieSecure,
		bcryptCost:   cost,
		newJudgeID:   uuid.NewString,
		compare:      auth.ComparePassword,
	}
}

// IssueUserSession verifies email and password against the credential store
// and mints a user-family token.
func (s *SessionService) IssueUserSession(ctx context.Context, email, password, clientIP string) (*SessionResult, error) {
	if email == "" || password == "" {
		return nil, s.reject(ctx, domain.PrincipalUser, opLogin, "", ErrMissingCredentials)
	}

	if err := s.limiter.CheckLogin(ctx, email, clientIP); err != nil {
		if errors.Is(err, ratelimit.ErrRateLimited) {
			return nil, s.reject(ctx, domain.PrincipalUser, opLogin, "", ErrLoginThrottled)
		}
		s.logger.Warn("login throttle check failed", zap.Error(err))
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.compareDecoy(password)
			s.countFailure(ctx, email, clientIP)
			return nil, s.reject(ctx, domain.PrincipalUser, opLogin, "", ErrNoMatchingAccount)
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	if err := s.compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("stored password hash unusable", zap.String("user_id", user.ID), zap.Error(err))
		}
		s.countFailure(ctx, email, clientIP)
		return nil, s.reject(ctx, domain.PrincipalUser, opLogin, user.ID, ErrBadPassword)
	}
	if auth.NeedsRehash(user.PasswordHash, s.bcryptCost) {
		s.logger.Warn("password hash below configured cost", zap.String("user_id", user.ID))
	}

	result, err := s.mint(s.keys.User(), user.ID, user.Role, &user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.limiter.ResetLogin(ctx, email, clientIP); err != nil {
		s.logger.Warn("login throttle reset failed", zap.Error(err))
	}
	s.accept(ctx, events.EventSessionIssued, opLogin, result.Session)
	return result, nil
}

// IssueJudgeSession admits an anonymous judge for a requested survey. The
// judge id is minted here and carried forward by every refresh.
func (s *SessionService) IssueJudgeSession(ctx context.Context, requestedSurveyID string) (*SessionResult, error) {
	if requestedSurveyID == "" {
		return nil, s.reject(ctx, domain.PrincipalJudge, opLogin, "", ErrMissingSurveyContext)
	}

	result, err := s.mint(s.keys.Judge(), s.newJudgeID(), domain.RoleJudge, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("judge admitted",
		zap.String("judge_id", result.Session.SubjectID),
		zap.String("survey_id", requestedSurveyID))
	s.accept(ctx, events.EventSessionIssued, opLogin, result.Session)
	return result, nil
}

// RefreshUserToken rotates a valid user token. The role is re-read from the
// credential store so a changed role takes effect on the next refresh.
func (s *SessionService) RefreshUserToken(ctx context.Context, token string) (*SessionResult, error) {
	claims, err := s.decode(s.keys.User(), token)
	if err != nil {
		return nil, s.reject(ctx, domain.PrincipalUser, opRefresh, "", err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.reject(ctx, domain.PrincipalUser, opRefresh, claims.UserID, ErrMissingBackingRecord)
		}
		return nil, fmt.Errorf("lookup user by id: %w", err)
	}

	result, err := s.mint(s.keys.User(), claims.UserID, user.Role, &user.Email)
	if err != nil {
		return nil, err
	}
	s.accept(ctx, events.EventSessionRefreshed, opRefresh, result.Session)
	return result, nil
}

// RefreshJudgeToken rotates a valid judge token, keeping its subject id and role.
func (s *SessionService) RefreshJudgeToken(ctx context.Context, token string) (*SessionResult, error) {
	claims, err := s.decode(s.keys.Judge(), token)
	if err != nil {
		return nil, s.reject(ctx, domain.PrincipalJudge, opRefresh, "", err)
	}

	result, err := s.mint(s.keys.Judge(), claims.UserID, claims.Role, nil)
	if err != nil {
		return nil, err
	}
	s.accept(ctx, events.EventSessionRefreshed, opRefresh, result.Session)
	return result, nil
}

// Logout returns the directive that clears the kind's cookie. It never
// fails; a presented token is only inspected to attribute the audit event.
func (s *SessionService) Logout(ctx context.Context, kind domain.PrincipalKind, token string) auth.CookieDirective {
	subjectID := ""
	if tm := s.keys.For(kind); tm != nil && token != "" {
		if claims, err := tm.Decode(token); err == nil {
			subjectID = claims.UserID
		}
	}
	s.metrics.RecordAuth(string(kind), opLogout, "success")
	s.publish(ctx, events.Event{
		Type:      events.EventSessionEnded,
		Kind:      kind,
		SubjectID: subjectID,
	})
	return auth.ClearCookie(kind, s.cookieSecure)
}

func (s *SessionService) decode(tm *auth.TokenManager, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, ErrMissingCookie
	}
	claims, err := tm.Decode(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return claims, nil
}

func (s *SessionService) mint(tm *auth.TokenManager, subjectID, role string, email *string) (*SessionResult, error) {
	token, err := tm.Encode(subjectID, role)
	if err != nil {
		return nil, fmt.Errorf("encode %s token: %w", tm.Kind(), err)
	}
	session := &domain.Session{
		Kind:      tm.Kind(),
		SubjectID: subjectID,
		Role:      role,
		Email:     email,
		Token:     token.Value,
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.ExpiresAt,
	}
	return &SessionResult{Session: session, Cookie: auth.SessionCookie(session, s.cookieSecure)}, nil
}

// compareDecoy runs a bcrypt compare against a throwaway hash so an unknown
// email costs as much as a wrong password.
func (s *SessionService) compareDecoy(password string) {
	s.decoyOnce.Do(func() {
		hash, err := auth.HashPassword(uuid.NewString(), s.bcryptCost)
		if err != nil {
			s.logger.Warn("decoy password hash unavailable", zap.Error(err))
			return
		}
		s.decoyHash = hash
	})
	if s.decoyHash != "" {
		_ = s.compare(s.decoyHash, password)
	}
}

func (s *SessionService) countFailure(ctx context.Context, email, clientIP string) {
	if err := s.limiter.IncrementLogin(ctx, email, clientIP); err != nil {
		s.logger.Warn("login throttle increment failed", zap.Error(err))
	}
}

func (s *SessionService) accept(ctx context.Context, eventType events.EventType, operation string, session *domain.Session) {
	s.metrics.RecordAuth(string(session.Kind), operation, "success")
	s.publish(ctx, events.Event{
		Type:      eventType,
		Kind:      session.Kind,
		SubjectID: session.SubjectID,
		Payload:   events.SessionPayload{Role: session.Role, ExpiresAt: session.ExpiresAt},
	})
}

func (s *SessionService) reject(ctx context.Context, kind domain.PrincipalKind, operation, subjectID string, err error) error {
	s.metrics.RecordAuth(string(kind), operation, "rejected")
	s.logger.Info("session request rejected",
		zap.String("kind", string(kind)),
		zap.String("operation", operation),
		zap.Error(err))
	s.publish(ctx, events.Event{
		Type:      events.EventSessionRejected,
		Kind:      kind,
		SubjectID: subjectID,
		Payload:   events.RejectedPayload{Operation: operation, Reason: reason(err)},
	})
	return err
}

func (s *SessionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

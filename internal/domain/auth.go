package domain

import "time"

// PrincipalKind differentiates registered users from judges.
type PrincipalKind string

const (
	PrincipalUser  PrincipalKind = "user"
	PrincipalJudge PrincipalKind = "judge"
)

// RoleJudge is the only role carried by judge tokens.
const RoleJudge = "judge"

// Identity is what a verified token says about its bearer.
type Identity struct {
	SubjectID string `json:"userid"`
	Role      string `json:"role"`
}

// AuthContext records which principal kinds verified on a request.
// Either field may be nil; a request reaching a handler has at least one.
type AuthContext struct {
	User  *Identity `json:"user"`
	Judge *Identity `json:"judge"`
}

// Empty reports whether no principal kind verified.
func (a AuthContext) Empty() bool {
	return a.User == nil && a.Judge == nil
}

// Get returns the identity recorded for kind.
func (a AuthContext) Get(kind PrincipalKind) (*Identity, bool) {
	switch kind {
	case PrincipalUser:
		return a.User, a.User != nil
	case PrincipalJudge:
		return a.Judge, a.Judge != nil
	default:
		return nil, false
	}
}

// Session is a freshly minted or rotated token for one principal kind.
type Session struct {
	Kind      PrincipalKind
	SubjectID string
	Role      string
	Email     *string
	Token     string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

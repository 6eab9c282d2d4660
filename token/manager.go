package token

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/botworks/club-server/internal/utils"
	"github.com/botworks/club-server/roles"
)

// UserInfo is the identity snapshot embedded in a credential.
type UserInfo struct {
	Subject string
	Email   string
	Name    string
}

// Credential is the decoded, verified view of a minted credential. A nil
// Role means the token carries no privilege claim, which is a distinct state
// from "resolved as admin" - the two must never be confused.
type Credential struct {
	Active  bool
	Subject string
	Email   string
	Name    string
	Role    *roles.Role
	Iat     *int64
	Exp     *int64
	JTI     string
}

// Manager mints and verifies HS256 session credentials and tracks
// per-subject revocation. Revocation has second granularity: a credential is
// invalid when its issue time falls in an earlier second than the subject's
// revocation horizon.
type Manager struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
	revoked  RevokedSubjectStore
	nowFunc  func() time.Time
}

type ManagerOption func(*Manager)

// WithLifetime sets how long minted credentials live. This is the fixed
// session lifetime; the embedded expiry and the session marker both derive
// from it.
func WithLifetime(lifetime time.Duration) ManagerOption {
	return func(m *Manager) {
		m.lifetime = lifetime
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithRevokedSubjectStore(store RevokedSubjectStore) ManagerOption {
	return func(m *Manager) {
		m.revoked = store
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func New(secret []byte, options ...ManagerOption) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("[token.New] signing secret is required")
	}

	m := &Manager{
		secret:   secret,
		lifetime: time.Hour,
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.revoked == nil {
		m.revoked = NewInMemoryRevokedSubjectStore(m.lifetime)
	}
	return m, nil
}

// Lifetime returns the configured credential lifetime.
func (m *Manager) Lifetime() time.Duration {
	return m.lifetime
}

// Mint issues a credential for user carrying the resolved role.
func (m *Manager) Mint(user UserInfo, role roles.Role) (string, error) {
	now := m.nowFunc()
	claims := jwt.MapClaims{
		"iss":   m.issuer,
		"sub":   user.Subject,
		"email": user.Email,
		"name":  user.Name,
		"role":  string(role),
		"iat":   now.Unix(),
		"exp":   now.Add(m.lifetime).Unix(),
		"jti":   uuid.New().String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "Manager.Mint SignedString")
	}
	return signed, nil
}

// Verify checks the signature and expiry of a raw credential and the
// subject's revocation horizon. Verification failures yield an inactive
// credential rather than a partial one.
func (m *Manager) Verify(ctx context.Context, rawToken string) (*Credential, error) {
	if strings.TrimSpace(rawToken) == "" {
		return &Credential{Active: false}, nil
	}

	parsed, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.nowFunc))

	if err != nil || !parsed.Valid {
		return &Credential{Active: false}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return &Credential{Active: false}, errors.New("error extracting claims from token")
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)
	jti, _ := claims["jti"].(string)

	cred := &Credential{
		Active:  true,
		Subject: sub,
		Email:   email,
		Name:    name,
		Iat:     utils.Ptr(int64(iat)),
		Exp:     utils.Ptr(int64(exp)),
		JTI:     jti,
	}

	if roleStr, ok := claims["role"].(string); ok {
		if role, known := roles.Parse(roleStr); known {
			cred.Role = utils.Ptr(role)
		}
	}

	revokedAt, found, err := m.revoked.RevokedAt(ctx, sub)
	if err != nil {
		return &Credential{Active: false}, errors.Wrap(err, "Manager.Verify RevokedAt")
	}
	if found && int64(iat) < revokedAt.Unix() {
		cred.Active = false
	}

	return cred, nil
}

// RevokeAll invalidates every credential issued to subject before now.
func (m *Manager) RevokeAll(ctx context.Context, subject string) error {
	if err := m.revoked.Revoke(ctx, subject, m.nowFunc()); err != nil {
		return errors.Wrap(err, "Manager.RevokeAll")
	}
	return nil
}

// CleanupRevokedSubjects drops revocation horizons old enough that every
// credential they could affect has expired anyway.
func (m *Manager) CleanupRevokedSubjects(ctx context.Context) {
	if m.revoked != nil {
		m.revoked.Cleanup(ctx, m.nowFunc())
	}
}

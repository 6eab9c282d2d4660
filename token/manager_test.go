package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/botworks/club-server/internal/utils"
	"github.com/botworks/club-server/roles"
	"github.com/botworks/club-server/token"
)

const (
	secretStr   = "test-signing-secret"
	testIssuer  = "https://club.example.org"
	testSubject = "subject-1"
	testEmail   = "jordan@club.example.org"
)

// managerAt builds a Manager whose clock is the mutable *now.
func managerAt(t *testing.T, now *time.Time, options ...token.ManagerOption) *token.Manager {
	t.Helper()

	options = append([]token.ManagerOption{
		token.WithIssuer(testIssuer),
		token.WithLifetime(time.Hour),
		token.WithNowFunc(func() time.Time { return *now }),
	}, options...)

	m, err := token.New([]byte(secretStr), options...)
	require.NoError(t, err)
	return m
}

func mintFor(t *testing.T, m *token.Manager, role roles.Role) string {
	t.Helper()
	raw, err := m.Mint(token.UserInfo{Subject: testSubject, Email: testEmail, Name: "Jordan"}, role)
	require.NoError(t, err)
	return raw
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := token.New(nil)
	require.Error(t, err)
}

func TestMintVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := managerAt(t, &now)

	raw := mintFor(t, m, roles.RoleSuperAdmin)

	cred, err := m.Verify(context.Background(), raw)
	require.NoError(t, err)
	require.True(t, cred.Active)
	require.Equal(t, testSubject, cred.Subject)
	require.Equal(t, testEmail, cred.Email)
	require.NotNil(t, cred.Role)
	require.Equal(t, roles.RoleSuperAdmin, *cred.Role)
	require.Equal(t, now.Unix(), utils.Value(cred.Iat))
	require.Equal(t, now.Add(time.Hour).Unix(), utils.Value(cred.Exp))
	require.NotEmpty(t, cred.JTI)
}

func TestVerifyExpiredCredentialIsInactive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := managerAt(t, &now)

	raw := mintFor(t, m, roles.RoleAdmin)

	now = now.Add(time.Hour + time.Second)
	cred, err := m.Verify(context.Background(), raw)
	require.Error(t, err)
	require.False(t, cred.Active)
}

func TestVerifyTamperedCredentialIsInactive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := managerAt(t, &now)

	raw := mintFor(t, m, roles.RoleAdmin)
	tampered := raw[:len(raw)-2] + "xx"

	cred, err := m.Verify(context.Background(), tampered)
	require.Error(t, err)
	require.False(t, cred.Active)
}

func TestVerifyEmptyTokenIsInactive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := managerAt(t, &now)

	cred, err := m.Verify(context.Background(), "  ")
	require.NoError(t, err)
	require.False(t, cred.Active)
}

func TestVerifyCredentialWithoutRoleClaim(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := managerAt(t, &now)

	// A token signed with the right secret but carrying no role claim is
	// valid yet unprivileged; Role stays nil rather than defaulting.
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": testIssuer,
		"sub": testSubject,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}).SignedString([]byte(secretStr))
	require.NoError(t, err)

	cred, err := m.Verify(context.Background(), raw)
	require.NoError(t, err)
	require.True(t, cred.Active)
	require.Nil(t, cred.Role)
}

func TestRevokeAllInvalidatesEarlierCredentials(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := managerAt(t, &now)

	old := mintFor(t, m, roles.RoleAdmin)

	now = now.Add(2 * time.Second)
	require.NoError(t, m.RevokeAll(context.Background(), testSubject))

	cred, err := m.Verify(context.Background(), old)
	require.NoError(t, err)
	require.False(t, cred.Active)
}

func TestCredentialMintedAtRevocationInstantSurvives(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := managerAt(t, &now)

	// Revoke-then-mint within the same second is the role-change flow: the
	// fresh credential must remain valid.
	require.NoError(t, m.RevokeAll(context.Background(), testSubject))
	fresh := mintFor(t, m, roles.RoleSuperAdmin)

	cred, err := m.Verify(context.Background(), fresh)
	require.NoError(t, err)
	require.True(t, cred.Active)
}

func TestRevocationDoesNotAffectOtherSubjects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := managerAt(t, &now)

	other, err := m.Mint(token.UserInfo{Subject: "subject-2", Email: "sam@club.example.org"}, roles.RoleAdmin)
	require.NoError(t, err)

	now = now.Add(time.Second)
	require.NoError(t, m.RevokeAll(context.Background(), testSubject))

	cred, err := m.Verify(context.Background(), other)
	require.NoError(t, err)
	require.True(t, cred.Active)
}

func TestCleanupDropsStaleHorizons(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := managerAt(t, &now)

	old := mintFor(t, m, roles.RoleAdmin)
	now = now.Add(time.Second)
	require.NoError(t, m.RevokeAll(context.Background(), testSubject))

	// After the retention window every credential the horizon could affect
	// has expired on its own, so dropping it changes nothing observable.
	now = now.Add(2 * time.Hour)
	m.CleanupRevokedSubjects(context.Background())

	cred, err := m.Verify(context.Background(), old)
	require.Error(t, err)
	require.False(t, cred.Active)
}

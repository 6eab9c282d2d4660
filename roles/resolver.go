package roles

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/botworks/club-server/identity"
	apperrors "github.com/botworks/club-server/internal/errors"
)

// Resolver derives the privilege level for a verified identity and attaches
// it to the identity's durable claim. The allow-list function is consulted
// fresh on every resolution so operational updates take effect on the next
// login without a redeploy.
type Resolver struct {
	allowList func() []string
	claims    ClaimRepo
	revoker   Revoker
	logger    zerolog.Logger
	nowFunc   func() time.Time
}

// ResolverOption defines a function type to modify the Resolver instance.
type ResolverOption func(*Resolver)

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.nowFunc = now
	}
}

// WithLogger sets the resolver's logger.
func WithLogger(logger zerolog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver initializes a Resolver with required dependencies.
func NewResolver(allowList func() []string, claims ClaimRepo, revoker Revoker, options ...ResolverOption) (*Resolver, error) {
	if allowList == nil {
		return nil, errors.New("[NewResolver] allowList func is required")
	}
	if claims == nil {
		return nil, errors.New("[NewResolver] claims repo is required")
	}
	if revoker == nil {
		return nil, errors.New("[NewResolver] revoker is required")
	}

	r := &Resolver{
		allowList: allowList,
		claims:    claims,
		revoker:   revoker,
		logger:    zerolog.Nop(),
		nowFunc:   time.Now,
	}
	for _, opt := range options {
		opt(r)
	}

	if len(r.allowList()) == 0 {
		r.warnEmptyAllowList()
	}

	return r, nil
}

// Outcome reports what a resolution did, so callers can observe role
// changes without re-reading the claim store.
type Outcome struct {
	Role    Role
	Revoked bool // outstanding credentials were invalidated
}

// Resolve computes the privilege level for ident and writes it to the
// durable claim. The claim write is unconditional so drift between the
// allow-list and a stale claim self-heals on the next login. When the
// computed role differs from a previously existing claim, every outstanding
// credential for the subject is invalidated; on first login the claim is
// written but nothing is revoked, since the freshly issued credential
// already carries the new role.
func (r *Resolver) Resolve(ctx context.Context, ident *identity.VerifiedIdentity) (*Outcome, error) {
	if ident == nil || ident.Subject == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if NormalizeEmail(ident.Email) == "" {
		return nil, apperrors.ErrMalformedIdentity
	}

	role := r.roleFor(ident.Email)

	prior, err := r.claims.GetClaim(ctx, ident.Subject)
	hadPrior := err == nil && prior != nil
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Wrapf(apperrors.ErrBackendUnavailable, "reading claim for %s: %v", ident.Subject, err)
	}

	if err := r.claims.UpsertClaim(ctx, &Claim{
		Subject:   ident.Subject,
		Email:     NormalizeEmail(ident.Email),
		Role:      role,
		UpdatedAt: r.nowFunc(),
	}); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrBackendUnavailable, "writing claim for %s: %v", ident.Subject, err)
	}

	outcome := &Outcome{Role: role}
	if hadPrior && prior.Role != role {
		// Claim write and revocation are sequential, not transactional. A
		// failure here leaves a correct claim with unrevoked old credentials;
		// the new role is still honored on the next natural refresh.
		if err := r.revoker.RevokeAll(ctx, ident.Subject); err != nil {
			r.logger.Error().Err(err).
				Str("subject", ident.Subject).
				Str("from", string(prior.Role)).
				Str("to", string(role)).
				Msg("role changed but credential revocation failed")
		} else {
			outcome.Revoked = true
			r.logger.Info().
				Str("subject", ident.Subject).
				Str("from", string(prior.Role)).
				Str("to", string(role)).
				Msg("role changed, outstanding credentials invalidated")
		}
	}

	return outcome, nil
}

// roleFor applies the allow-list policy. Comparison is case-insensitive and
// whitespace-trimmed on both sides.
func (r *Resolver) roleFor(email string) Role {
	list := r.allowList()
	if len(list) == 0 {
		r.warnEmptyAllowList()
		return RoleAdmin
	}

	normalized := NormalizeEmail(email)
	for _, entry := range list {
		if NormalizeEmail(entry) == normalized {
			return RoleSuperAdmin
		}
	}
	return RoleAdmin
}

func (r *Resolver) warnEmptyAllowList() {
	r.logger.Warn().Msg("super-admin allow-list is empty: nobody can be granted the elevated role and every login resolves to admin - check SUPER_ADMIN_EMAILS")
}

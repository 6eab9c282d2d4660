package identity

import "context"

// VerifiedIdentity is the result of cryptographically verifying a
// provider-issued token. The subject is opaque and stable per user; the
// email is reported exactly as the provider asserted it (normalization is
// the caller's concern).
type VerifiedIdentity struct {
	Subject string
	Email   string
	Name    string
}

// Verifier verifies a raw bearer token issued by the identity provider.
// Implementations must reject anything they cannot cryptographically verify;
// the rest of the system never sees unverified identities.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*VerifiedIdentity, error)
}

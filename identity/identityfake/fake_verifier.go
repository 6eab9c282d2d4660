package identityfake

import (
	"context"
	"sync"

	"github.com/botworks/club-server/identity"
	apperrors "github.com/botworks/club-server/internal/errors"
)

var _ identity.Verifier = (*FakeVerifier)(nil)

// FakeVerifier maps raw token strings to identities for tests.
type FakeVerifier struct {
	identities map[string]*identity.VerifiedIdentity
	err        error
	lock       sync.RWMutex
}

func NewFakeVerifier() *FakeVerifier {
	return &FakeVerifier{
		identities: make(map[string]*identity.VerifiedIdentity),
	}
}

// Register makes rawToken verify as ident.
func (v *FakeVerifier) Register(rawToken string, ident *identity.VerifiedIdentity) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.identities[rawToken] = ident
}

// FailWith makes every Verify call return err.
func (v *FakeVerifier) FailWith(err error) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.err = err
}

func (v *FakeVerifier) Verify(_ context.Context, rawToken string) (*identity.VerifiedIdentity, error) {
	v.lock.RLock()
	defer v.lock.RUnlock()

	if v.err != nil {
		return nil, v.err
	}
	if rawToken == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	ident, ok := v.identities[rawToken]
	if !ok {
		return nil, apperrors.ErrInvalidCredential
	}
	return ident, nil
}

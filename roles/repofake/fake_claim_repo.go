package fakeclaimrepo

import (
	"context"
	"sync"

	apperrors "github.com/botworks/club-server/internal/errors"
	"github.com/botworks/club-server/roles"
)

var _ roles.ClaimRepo = (*FakeClaimRepo)(nil)

type FakeClaimRepo struct {
	claims map[string]*roles.Claim
	err    error
	lock   sync.RWMutex
}

func NewFakeClaimRepo() *FakeClaimRepo {
	return &FakeClaimRepo{
		claims: make(map[string]*roles.Claim),
	}
}

// FailWith makes every call return err, simulating an unavailable store.
func (cr *FakeClaimRepo) FailWith(err error) {
	cr.lock.Lock()
	defer cr.lock.Unlock()
	cr.err = err
}

func (cr *FakeClaimRepo) GetClaim(_ context.Context, subject string) (*roles.Claim, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	if cr.err != nil {
		return nil, cr.err
	}
	claim, ok := cr.claims[subject]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *claim
	return &copied, nil
}

func (cr *FakeClaimRepo) UpsertClaim(_ context.Context, claim *roles.Claim) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	if cr.err != nil {
		return cr.err
	}
	copied := *claim
	cr.claims[claim.Subject] = &copied
	return nil
}

package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-fractions/internal/domain"
)

// RoleRegistry defines the interface for capability grants
type RoleRegistry interface {
	// Has checks if principal holds capability
	Has(ctx context.Context, capability domain.Capability, principal common.Address) (bool, error)

	// Grant gives capability to principal
	Grant(capability domain.Capability, principal common.Address) error

	// Revoke takes capability away from principal
	Revoke(capability domain.Capability, principal common.Address) error

	// Members returns the holders of capability sorted by hex
	Members(capability domain.Capability) []common.Address
}

type roleRegistry struct {
	mu     sync.RWMutex
	grants map[domain.Capability]map[common.Address]bool
}

// NewRoleRegistry creates a role registry seeded from a capability -> addresses map
func NewRoleRegistry(seed map[domain.Capability][]common.Address) (RoleRegistry, error) {
	r := &roleRegistry{grants: make(map[domain.Capability]map[common.Address]bool)}
	for c, addrs := range seed {
		for _, a := range addrs {
			if err := r.Grant(c, a); err != nil {
				return nil, fmt.Errorf("failed to seed role %s: %w", c, err)
			}
		}
	}
	return r, nil
}

// Has checks if principal holds capability
func (r *roleRegistry) Has(_ context.Context, capability domain.Capability, principal common.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.grants[capability][principal], nil
}

// Grant gives capability to principal
func (r *roleRegistry) Grant(capability domain.Capability, principal common.Address) error {
	if !domain.IsValidCapability(capability) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownCapability, capability)
	}
	if domain.IsZeroAddress(principal) {
		return domain.ErrNullAddress
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.grants[capability] == nil {
		r.grants[capability] = make(map[common.Address]bool)
	}
	r.grants[capability][principal] = true
	return nil
}

// Revoke takes capability away from principal
func (r *roleRegistry) Revoke(capability domain.Capability, principal common.Address) error {
	if !domain.IsValidCapability(capability) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownCapability, capability)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.grants[capability], principal)
	return nil
}

// Members returns the holders of capability sorted by hex
func (r *roleRegistry) Members(capability domain.Capability) []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedAddresses(r.grants[capability])
}

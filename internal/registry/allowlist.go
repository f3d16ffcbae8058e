package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-fractions/internal/adapter"
	"github.com/feral-file/ff-fractions/internal/domain"
)

// AllowListRegistry defines the interface for allow-list operations
type AllowListRegistry interface {
	// IsAddressAllowed checks if an address may buy fractions
	IsAddressAllowed(ctx context.Context, addr common.Address) (bool, error)

	// Allow adds addresses to the allow-list
	Allow(addrs []common.Address) error

	// Disallow removes addresses from the allow-list
	Disallow(addrs []common.Address) error

	// List returns the allowed addresses sorted by hex
	List() []common.Address
}

// AllowListRegistryLoader loads an allow-list from disk
type AllowListRegistryLoader interface {
	Load(filePath string) (AllowListRegistry, error)
}

// AllowListData represents the structure of the allow-list file: a JSON array of addresses
type AllowListData []string

// allowListRegistry is the internal implementation of AllowListRegistry
type allowListRegistry struct {
	mu        sync.RWMutex
	addresses map[common.Address]bool
}

type allowListRegistryLoader struct {
	fs   adapter.FileSystem
	json adapter.JSON
}

// NewAllowListRegistryLoader creates a loader reading files through fs
func NewAllowListRegistryLoader(fs adapter.FileSystem, json adapter.JSON) AllowListRegistryLoader {
	return &allowListRegistryLoader{fs: fs, json: json}
}

// Load loads the allow-list registry from a JSON file
func (l *allowListRegistryLoader) Load(filePath string) (AllowListRegistry, error) {
	data, err := l.fs.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read allow-list file: %w", err)
	}

	var allowListData AllowListData
	if err := l.json.Unmarshal(data, &allowListData); err != nil {
		return nil, fmt.Errorf("failed to parse allow-list JSON: %w", err)
	}

	addrs := make([]common.Address, 0, len(allowListData))
	for _, a := range allowListData {
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("invalid address in allow-list: %s", a)
		}
		addrs = append(addrs, common.HexToAddress(a))
	}

	return NewAllowListRegistry(addrs...), nil
}

// NewAllowListRegistry creates an in-memory allow-list seeded with addrs
func NewAllowListRegistry(addrs ...common.Address) AllowListRegistry {
	r := &allowListRegistry{addresses: make(map[common.Address]bool, len(addrs))}
	for _, a := range addrs {
		r.addresses[a] = true
	}
	return r
}

// IsAddressAllowed checks if an address may buy fractions
func (r *allowListRegistry) IsAddressAllowed(_ context.Context, addr common.Address) (bool, error) {
	if r == nil {
		return false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.addresses[addr], nil
}

// Allow adds addresses to the allow-list
func (r *allowListRegistry) Allow(addrs []common.Address) error {
	if err := checkAddresses(addrs); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range addrs {
		r.addresses[a] = true
	}
	return nil
}

// Disallow removes addresses from the allow-list
func (r *allowListRegistry) Disallow(addrs []common.Address) error {
	if err := checkAddresses(addrs); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range addrs {
		delete(r.addresses, a)
	}
	return nil
}

// List returns the allowed addresses sorted by hex
func (r *allowListRegistry) List() []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedAddresses(r.addresses)
}

func checkAddresses(addrs []common.Address) error {
	for _, a := range addrs {
		if domain.IsZeroAddress(a) {
			return domain.ErrNullAddress
		}
	}
	return nil
}

func sortedAddresses(set map[common.Address]bool) []common.Address {
	out := make([]common.Address, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Hex() < out[j].Hex()
	})
	return out
}

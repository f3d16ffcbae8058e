package registry_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/registry"
)

func TestRoleRegistry(t *testing.T) {
	ctx := context.Background()
	a := common.HexToAddress(addrA)
	b := common.HexToAddress(addrB)

	reg, err := registry.NewRoleRegistry(map[domain.Capability][]common.Address{
		domain.CapabilityAdmin: {a},
	})
	require.NoError(t, err)

	ok, err := reg.Has(ctx, domain.CapabilityAdmin, a)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = reg.Has(ctx, domain.CapabilitySaleIssuer, a)
	assert.False(t, ok)

	require.NoError(t, reg.Grant(domain.CapabilitySaleIssuer, b))
	assert.Equal(t, []common.Address{b}, reg.Members(domain.CapabilitySaleIssuer))

	require.NoError(t, reg.Revoke(domain.CapabilitySaleIssuer, b))
	ok, _ = reg.Has(ctx, domain.CapabilitySaleIssuer, b)
	assert.False(t, ok)

	assert.Error(t, reg.Grant("root", a))
	assert.ErrorIs(t, reg.Grant(domain.CapabilityAdmin, common.Address{}), domain.ErrNullAddress)
}

func TestNewRoleRegistry_RejectsUnknownCapability(t *testing.T) {
	_, err := registry.NewRoleRegistry(map[domain.Capability][]common.Address{
		"root": {common.HexToAddress(addrA)},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed role root")
}

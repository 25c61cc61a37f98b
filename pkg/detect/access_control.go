// Copyright 2025 Tokenlens
//
// Access-control and governance detection

package detect

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenlens/tokenlens/pkg/ethereum"
)

// nameResolveTimeout is the aggregate budget for reverse-name lookups.
const nameResolveTimeout = 2 * time.Second

// NameResolver resolves addresses to human-readable names. Lookups that
// fail leave the name unset; they never fail the detection.
type NameResolver interface {
	ResolveAll(ctx context.Context, addrs []common.Address) map[common.Address]string
}

// DetectAccessControl classifies who controls a contract. The resolver is
// optional; pass nil to skip name resolution.
func DetectAccessControl(ctx context.Context, client *ethereum.Client, contract common.Address, resolver NameResolver) AccessControlInfo {
	results := client.Batch(ctx, []ethereum.ContractCall{
		{To: contract, ABI: accessControlABI, Method: "owner"},
		supportsInterfaceCall(contract, IfaceAccessControl.ID),
		supportsInterfaceCall(contract, IfaceAccessControlEnumerable.ID),
	})
	ownerResult, acResult, acEnumResult := results[0], results[1], results[2]

	ownerAddr, ownerOK := ownerResult.Address(0)
	hasAccessControl, _ := acResult.Bool(0)
	hasEnumerable, _ := acEnumResult.Bool(0)

	var roleAdmin common.Address
	if hasEnumerable {
		roleAdmin = defaultAdminRoleMember(ctx, client, contract)
	}

	info := AccessControlInfo{
		HasOwner: ownerOK && ownerAddr != (common.Address{}),
		HasRoles: hasAccessControl,
	}

	switch {
	case hasAccessControl:
		if ownerOK {
			info.AccessControlType = AccessControlRoleBasedOwnable
		} else {
			info.AccessControlType = AccessControlRoleBased
		}
		control := ownerAddr
		if control == (common.Address{}) {
			control = roleAdmin
		}
		info.GovernanceType, info.TimelockDelay = classifyGovernance(ctx, client, control)

	case ownerOK && ownerAddr != (common.Address{}):
		info.AccessControlType = AccessControlOwnable
		info.GovernanceType, info.TimelockDelay = classifyGovernance(ctx, client, ownerAddr)

	case ownerOK:
		// owner() exists but returns zero: ownership was renounced.
		info.AccessControlType = AccessControlOwnable
		info.GovernanceType = GovernanceRenounced

	default:
		info.AccessControlType = AccessControlNone
		info.GovernanceType = GovernanceUnknown
	}

	primary := roleAdmin
	if primary == (common.Address{}) {
		primary = ownerAddr
	}
	info.OwnerAddress = ethereum.OptionalAddress(primary)
	info.AdminAddress = ethereum.OptionalAddress(roleAdmin)

	if resolver != nil {
		resolveControlNames(ctx, resolver, &info, primary, roleAdmin)
	}

	return info
}

// defaultAdminRoleMember asks AccessControlEnumerable who holds
// DEFAULT_ADMIN_ROLE (the zero role hash).
func defaultAdminRoleMember(ctx context.Context, client *ethereum.Client, contract common.Address) common.Address {
	result := client.Call(ctx, ethereum.ContractCall{
		To:     contract,
		ABI:    accessControlABI,
		Method: "getRoleMember",
		Args:   []interface{}{[32]byte{}, big.NewInt(0)},
	})
	addr, _ := result.Address(0)
	return addr
}

// classifyGovernance refines what kind of entity sits behind a control
// address: EOA, timelock (with its delay), Gnosis-style multisig, or an
// opaque contract.
func classifyGovernance(ctx context.Context, client *ethereum.Client, control common.Address) (GovernanceType, *big.Int) {
	if control == (common.Address{}) {
		return GovernanceUnknown, nil
	}

	code, err := client.CodeAt(ctx, control)
	if err != nil {
		return GovernanceUnknown, nil
	}
	if len(code) == 0 {
		return GovernanceEOA, nil
	}

	delayResult := client.Call(ctx, ethereum.ContractCall{To: control, ABI: accessControlABI, Method: "getMinDelay"})
	if delay, ok := delayResult.BigInt(0); ok {
		return GovernanceTimelock, delay
	}

	thresholdResult := client.Call(ctx, ethereum.ContractCall{To: control, ABI: accessControlABI, Method: "getThreshold"})
	if thresholdResult.Success {
		return GovernanceMultisig, nil
	}

	return GovernanceContract, nil
}

func resolveControlNames(ctx context.Context, resolver NameResolver, info *AccessControlInfo, primary, admin common.Address) {
	var targets []common.Address
	if primary != (common.Address{}) {
		targets = append(targets, primary)
	}
	if admin != (common.Address{}) && admin != primary {
		targets = append(targets, admin)
	}
	if len(targets) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, nameResolveTimeout)
	defer cancel()

	names := resolver.ResolveAll(ctx, targets)
	info.OwnerName = names[primary]
	info.AdminName = names[admin]
}

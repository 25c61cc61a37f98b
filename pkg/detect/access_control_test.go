// Copyright 2025 Tokenlens
//
// Access-control detector tests

package detect

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestDetectAccessControl_RenouncedOwnership(t *testing.T) {
	node := &fakeNode{
		calls: map[string]string{
			"8da5cb5b": "0x" + addrWord("0000000000000000000000000000000000000000"), // owner() = zero
		},
	}
	client := node.client(t)

	info := DetectAccessControl(context.Background(), client, contractAddr, nil)

	if info.AccessControlType != AccessControlOwnable {
		t.Errorf("access control = %q, want ownable", info.AccessControlType)
	}
	if info.GovernanceType != GovernanceRenounced {
		t.Errorf("governance = %q, want renounced", info.GovernanceType)
	}
	if info.HasOwner {
		t.Error("renounced contract must not report an owner")
	}
	if info.OwnerAddress != nil {
		t.Error("zero owner address must stay unset")
	}
}

func TestDetectAccessControl_EOAOwner(t *testing.T) {
	owner := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	node := &fakeNode{
		calls: map[string]string{
			"8da5cb5b": "0x" + addrWord(owner),
		},
		// No bytecode behind the owner address: an EOA.
	}
	client := node.client(t)

	info := DetectAccessControl(context.Background(), client, contractAddr, nil)

	if info.AccessControlType != AccessControlOwnable {
		t.Errorf("access control = %q, want ownable", info.AccessControlType)
	}
	if info.GovernanceType != GovernanceEOA {
		t.Errorf("governance = %q, want eoa", info.GovernanceType)
	}
	if !info.HasOwner {
		t.Error("expected has_owner")
	}
	if info.OwnerAddress == nil || strings.ToLower(info.OwnerAddress.Hex()) != "0x"+owner {
		t.Errorf("owner = %v", info.OwnerAddress)
	}
}

func TestDetectAccessControl_TimelockOwner(t *testing.T) {
	timelock := "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	node := &fakeNode{
		calls: map[string]string{
			"8da5cb5b": "0x" + addrWord(timelock),
			"f27a0c92": "0x" + word(172800), // getMinDelay() = 2 days
		},
		code: map[string]string{
			timelock: "6080604052",
		},
	}
	client := node.client(t)

	info := DetectAccessControl(context.Background(), client, contractAddr, nil)

	if info.GovernanceType != GovernanceTimelock {
		t.Fatalf("governance = %q, want timelock", info.GovernanceType)
	}
	if info.TimelockDelay == nil || info.TimelockDelay.Int64() != 172800 {
		t.Errorf("timelock delay = %v, want 172800", info.TimelockDelay)
	}
}

func TestDetectAccessControl_MultisigOwner(t *testing.T) {
	safe := "cccccccccccccccccccccccccccccccccccccccc"
	node := &fakeNode{
		calls: map[string]string{
			"8da5cb5b": "0x" + addrWord(safe),
			"e75235b8": "0x" + word(3), // getThreshold() = 3
		},
		code: map[string]string{
			safe: "6080604052",
		},
	}
	client := node.client(t)

	info := DetectAccessControl(context.Background(), client, contractAddr, nil)
	if info.GovernanceType != GovernanceMultisig {
		t.Errorf("governance = %q, want multisig", info.GovernanceType)
	}
}

func TestDetectAccessControl_RoleBased(t *testing.T) {
	admin := "dddddddddddddddddddddddddddddddddddddddd"
	node := &fakeNode{
		calls: map[string]string{
			supportsPrefix(IfaceAccessControl):           boolPayload(true),
			supportsPrefix(IfaceAccessControlEnumerable): boolPayload(true),
			"9010d07c": "0x" + addrWord(admin), // getRoleMember(DEFAULT_ADMIN_ROLE, 0)
		},
		code: map[string]string{
			admin: "6080604052",
		},
	}
	client := node.client(t)

	info := DetectAccessControl(context.Background(), client, contractAddr, nil)

	if info.AccessControlType != AccessControlRoleBased {
		t.Errorf("access control = %q, want role_based", info.AccessControlType)
	}
	if !info.HasRoles {
		t.Error("expected has_roles")
	}
	if info.AdminAddress == nil || strings.ToLower(info.AdminAddress.Hex()) != "0x"+admin {
		t.Errorf("admin = %v", info.AdminAddress)
	}
}

func TestDetectAccessControl_None(t *testing.T) {
	node := &fakeNode{}
	client := node.client(t)

	info := DetectAccessControl(context.Background(), client, contractAddr, nil)

	if info.AccessControlType != AccessControlNone {
		t.Errorf("access control = %q, want none", info.AccessControlType)
	}
	if info.GovernanceType != GovernanceUnknown {
		t.Errorf("governance = %q, want unknown", info.GovernanceType)
	}
}

type staticResolver map[common.Address]string

func (r staticResolver) ResolveAll(_ context.Context, addrs []common.Address) map[common.Address]string {
	out := map[common.Address]string{}
	for _, a := range addrs {
		if name, ok := r[a]; ok {
			out[a] = name
		}
	}
	return out
}

func TestDetectAccessControl_ResolvesOwnerName(t *testing.T) {
	owner := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	node := &fakeNode{
		calls: map[string]string{
			"8da5cb5b": "0x" + addrWord(owner),
		},
	}
	client := node.client(t)

	resolver := staticResolver{common.HexToAddress(owner): "vault.example.eth"}
	info := DetectAccessControl(context.Background(), client, contractAddr, resolver)

	if info.OwnerName != "vault.example.eth" {
		t.Errorf("owner name = %q", info.OwnerName)
	}
}

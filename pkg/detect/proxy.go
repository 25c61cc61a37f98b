// Copyright 2025 Tokenlens
//
// Proxy pattern detection: EIP-1167 bytecode match, EIP-1967/1822 storage
// slots, EIP-2535 diamonds, then function-signature fallback. First match
// wins; later probes are skipped.

package detect

import (
	"context"
	"encoding/hex"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenlens/tokenlens/pkg/ethereum"
)

// EIP-1967 / EIP-1822 storage slots.
var (
	slotEIP1967Implementation = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")
	slotEIP1967Admin          = common.HexToHash("0xb53127684a568b3173ae13b9f8a6016e243e63b6e8ee1178d6a717850b5d6103")
	slotEIP1967Beacon         = common.HexToHash("0xa3f0ad74e5423aebfd80d3ef4346578335a9a72aeaee59ff6cb3582b35133d50")
	slotEIP1822Proxiable      = common.HexToHash("0xc5f16f0fcc639fa48a6947836d9850f504798523bf8c9a3a87d5876cf622bcf7")
)

// EIP-1167 minimal proxy runtime bytecode: exactly 45 bytes with the
// implementation address in the middle 20.
const (
	eip1167Prefix = "363d3d373d3d3d363d73"
	eip1167Suffix = "5af43d82803e903d91602b57fd5bf3"
	eip1167HexLen = 90
)

// Diamond (EIP-2535) interface ids.
var (
	ifaceDiamondLoupe = Interface{"DiamondLoupe", selector(0x48e2b093)}
	ifaceDiamondCut   = Interface{"DiamondCut", selector(0x1f931c1c)}
)

// DetectProxy reconstructs the contract's proxy shape from on-chain reads.
func DetectProxy(ctx context.Context, client *ethereum.Client, contract common.Address) ProxyInfo {
	if info, ok := checkMinimalProxy(ctx, client, contract); ok {
		return info
	}
	if info, ok := checkStorageSlotProxy(ctx, client, contract); ok {
		return info
	}
	if info, ok := checkDiamondProxy(ctx, client, contract); ok {
		return info
	}
	if info, ok := checkFunctionProxy(ctx, client, contract); ok {
		return info
	}
	return ProxyInfo{IsProxy: false, Standard: ProxyNone}
}

// checkMinimalProxy matches the exact 45-byte EIP-1167 runtime pattern.
// Longer bytecode (appended metadata, non-standard clones) falls through to
// the next detector.
func checkMinimalProxy(ctx context.Context, client *ethereum.Client, contract common.Address) (ProxyInfo, bool) {
	code, err := client.CodeAt(ctx, contract)
	if err != nil {
		return ProxyInfo{}, false
	}

	codeHex := strings.ToLower(hex.EncodeToString(code))
	if len(codeHex) != eip1167HexLen ||
		!strings.HasPrefix(codeHex, eip1167Prefix) ||
		!strings.HasSuffix(codeHex, eip1167Suffix) {
		return ProxyInfo{}, false
	}

	impl := common.HexToAddress(codeHex[len(eip1167Prefix) : len(eip1167Prefix)+40])
	return ProxyInfo{
		IsProxy:               true,
		Standard:              ProxyEIP1167,
		ImplementationAddress: ethereum.OptionalAddress(impl),
		IsUpgradeable:         false,
	}, true
}

// checkStorageSlotProxy reads the EIP-1967 and EIP-1822 slots.
func checkStorageSlotProxy(ctx context.Context, client *ethereum.Client, contract common.Address) (ProxyInfo, bool) {
	impl := readSlotAddress(ctx, client, contract, slotEIP1967Implementation)
	admin := readSlotAddress(ctx, client, contract, slotEIP1967Admin)
	beacon := readSlotAddress(ctx, client, contract, slotEIP1967Beacon)
	uups := readSlotAddress(ctx, client, contract, slotEIP1822Proxiable)

	if impl != (common.Address{}) {
		if beacon != (common.Address{}) {
			return ProxyInfo{
				IsProxy:               true,
				Standard:              ProxyBeacon,
				ImplementationAddress: ethereum.OptionalAddress(impl),
				BeaconAddress:         ethereum.OptionalAddress(beacon),
				IsUpgradeable:         true,
			}, true
		}
		return ProxyInfo{
			IsProxy:               true,
			Standard:              ProxyEIP1967,
			ImplementationAddress: ethereum.OptionalAddress(impl),
			AdminAddress:          ethereum.OptionalAddress(admin),
			IsUpgradeable:         true,
		}, true
	}

	if uups != (common.Address{}) {
		return ProxyInfo{
			IsProxy:               true,
			Standard:              ProxyEIP1822UUPS,
			ImplementationAddress: ethereum.OptionalAddress(uups),
			IsUpgradeable:         true,
		}, true
	}

	return ProxyInfo{}, false
}

// readSlotAddress extracts the address from a storage slot's lower 20
// bytes; the zero address means the slot is unset.
func readSlotAddress(ctx context.Context, client *ethereum.Client, contract common.Address, slot common.Hash) common.Address {
	value, err := client.StorageAt(ctx, contract, slot)
	if err != nil || len(value) != 32 {
		return common.Address{}
	}
	return common.BytesToAddress(value[12:])
}

// checkDiamondProxy looks for the DiamondLoupe interface, falling back to a
// direct facets() call. Upgradeability requires DiamondCut support.
func checkDiamondProxy(ctx context.Context, client *ethereum.Client, contract common.Address) (ProxyInfo, bool) {
	supportsLoupe := SupportsInterface(ctx, client, contract, ifaceDiamondLoupe)

	facetsResult := client.Call(ctx, ethereum.ContractCall{To: contract, ABI: proxyABI, Method: "facets"})

	if !supportsLoupe && !facetsResult.Success {
		return ProxyInfo{}, false
	}

	var facets []ethereum.Address
	if facetsResult.Success && len(facetsResult.Values) > 0 {
		facets = facetAddressList(facetsResult.Values[0])
	}
	if len(facets) == 0 {
		addrsResult := client.Call(ctx, ethereum.ContractCall{To: contract, ABI: proxyABI, Method: "facetAddresses"})
		if addrsResult.Success && len(addrsResult.Values) > 0 {
			if addrs, ok := addrsResult.Values[0].([]common.Address); ok {
				for _, a := range addrs {
					facets = append(facets, ethereum.NewAddress(a))
				}
			}
		}
	}

	return ProxyInfo{
		IsProxy:        true,
		Standard:       ProxyDiamond,
		FacetAddresses: facets,
		IsUpgradeable:  SupportsInterface(ctx, client, contract, ifaceDiamondCut),
	}, true
}

// facetAddressList pulls facet addresses out of the decoded
// (address,bytes4[])[] tuple slice. The ABI decoder produces an anonymous
// struct slice, so the field is read reflectively.
func facetAddressList(decoded interface{}) []ethereum.Address {
	v := reflect.ValueOf(decoded)
	if v.Kind() != reflect.Slice {
		return nil
	}
	var out []ethereum.Address
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if elem.Kind() != reflect.Struct {
			continue
		}
		field := elem.FieldByName("FacetAddress")
		if !field.IsValid() {
			continue
		}
		if addr, ok := field.Interface().(common.Address); ok {
			out = append(out, ethereum.NewAddress(addr))
		}
	}
	return out
}

// checkFunctionProxy probes implementation(), admin(), beacon() as a last
// resort.
func checkFunctionProxy(ctx context.Context, client *ethereum.Client, contract common.Address) (ProxyInfo, bool) {
	results := client.Batch(ctx, []ethereum.ContractCall{
		{To: contract, ABI: proxyABI, Method: "implementation"},
		{To: contract, ABI: proxyABI, Method: "admin"},
		{To: contract, ABI: proxyABI, Method: "beacon"},
	})
	implResult, adminResult, beaconResult := results[0], results[1], results[2]

	if impl, ok := implResult.Address(0); ok && impl != (common.Address{}) {
		return ProxyInfo{
			IsProxy:               true,
			Standard:              ProxyCustom,
			ImplementationAddress: ethereum.OptionalAddress(impl),
			IsUpgradeable:         true,
		}, true
	}

	if beaconAddr, ok := beaconResult.Address(0); ok {
		return ProxyInfo{
			IsProxy:       true,
			Standard:      ProxyBeacon,
			BeaconAddress: ethereum.OptionalAddress(beaconAddr),
			IsUpgradeable: true,
		}, true
	}

	if adminResult.Success {
		admin, _ := adminResult.Address(0)
		return ProxyInfo{
			IsProxy:       true,
			Standard:      ProxyCustom,
			AdminAddress:  ethereum.OptionalAddress(admin),
			IsUpgradeable: true,
		}, true
	}

	return ProxyInfo{}, false
}

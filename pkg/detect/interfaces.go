// Copyright 2025 Tokenlens
//
// ERC-165 interface detection. The interface set is a closed enumeration;
// adding a new standard means adding its selector here and, if needed, a
// compliance sub-report.

package detect

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenlens/tokenlens/pkg/ethereum"
)

// Interface is a named ERC-165 interface with its 4-byte selector.
type Interface struct {
	Name string
	ID   [4]byte
}

var (
	IfaceERC165                  = Interface{"ERC-165", selector(0x01ffc9a7)}
	IfaceERC173                  = Interface{"ERC-173", selector(0x7f5828d0)}
	IfaceERC721                  = Interface{"ERC-721", selector(0x80ac58cd)}
	IfaceERC721Metadata          = Interface{"ERC-721 Metadata", selector(0x5b5e139f)}
	IfaceERC721TokenReceiver     = Interface{"ERC-721 Token Receiver", selector(0x150b7a02)}
	IfaceERC721Enumerable        = Interface{"ERC-721 Enumerable", selector(0x780e9d63)}
	IfaceERC1155                 = Interface{"ERC-1155", selector(0xd9b67a26)}
	IfaceERC1155TokenReceiver    = Interface{"ERC-1155 Token Receiver", selector(0x4e2312e0)}
	IfaceERC1155MetadataURI      = Interface{"ERC-1155 Metadata URI", selector(0x0e89341c)}
	IfaceERC2981                 = Interface{"ERC-2981", selector(0x2a55205a)}
	IfaceERC4906                 = Interface{"ERC-4906", selector(0x49064906)}
	IfaceERC4907                 = Interface{"ERC-4907", selector(0xad092b5c)}
	IfaceERC5192                 = Interface{"ERC-5192", selector(0xb45a3c0e)}
	IfaceERC7572                 = Interface{"ERC-7572", selector(0xe8a3d485)}
	IfaceAccessControl           = Interface{"AccessControl", selector(0x7965db0b)}
	IfaceAccessControlEnumerable = Interface{"AccessControlEnumerable", selector(0x5a05180f)}
)

// KnownInterfaces is the full probe set, in stable order.
var KnownInterfaces = []Interface{
	IfaceERC165,
	IfaceERC173,
	IfaceERC721,
	IfaceERC721Metadata,
	IfaceERC721TokenReceiver,
	IfaceERC721Enumerable,
	IfaceERC1155,
	IfaceERC1155TokenReceiver,
	IfaceERC1155MetadataURI,
	IfaceERC2981,
	IfaceERC4906,
	IfaceERC4907,
	IfaceERC5192,
	IfaceERC7572,
	IfaceAccessControl,
	IfaceAccessControlEnumerable,
}

func selector(id uint32) [4]byte {
	return [4]byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
}

// supportsInterfaceCall builds the ERC-165 probe for one interface id.
func supportsInterfaceCall(contract common.Address, id [4]byte) ethereum.ContractCall {
	return ethereum.ContractCall{
		To:     contract,
		ABI:    erc165ABI,
		Method: "supportsInterface",
		Args:   []interface{}{id},
	}
}

// SupportsInterface checks a single interface. A failed call means "not
// supported": many non-compliant contracts simply revert on unknown
// selectors.
func SupportsInterface(ctx context.Context, client *ethereum.Client, contract common.Address, iface Interface) bool {
	result := client.Call(ctx, supportsInterfaceCall(contract, iface.ID))
	supported, _ := result.Bool(0)
	return supported
}

// SupportedInterfaces probes the full known set in a single batch and
// returns the support map.
func SupportedInterfaces(ctx context.Context, client *ethereum.Client, contract common.Address) map[string]bool {
	calls := make([]ethereum.ContractCall, len(KnownInterfaces))
	for i, iface := range KnownInterfaces {
		calls[i] = supportsInterfaceCall(contract, iface.ID)
	}

	results := client.Batch(ctx, calls)

	supported := make(map[string]bool, len(KnownInterfaces))
	for i, iface := range KnownInterfaces {
		b, _ := results[i].Bool(0)
		supported[iface.Name] = b
	}
	return supported
}

// DetectNFTStandard probes ERC-721 first (more common), then ERC-1155.
func DetectNFTStandard(ctx context.Context, client *ethereum.Client, contract common.Address) NFTStandard {
	if SupportsInterface(ctx, client, contract, IfaceERC721) {
		return StandardERC721
	}
	if SupportsInterface(ctx, client, contract, IfaceERC1155) {
		return StandardERC1155
	}
	return StandardUnknown
}

// Copyright 2025 Tokenlens
//
// Interface detector tests

package detect

import (
	"context"
	"testing"
)

func TestDetectNFTStandard(t *testing.T) {
	cases := []struct {
		name  string
		calls map[string]string
		want  NFTStandard
	}{
		{
			"erc721",
			map[string]string{supportsPrefix(IfaceERC721): boolPayload(true)},
			StandardERC721,
		},
		{
			"erc1155",
			map[string]string{
				supportsPrefix(IfaceERC721):  boolPayload(false),
				supportsPrefix(IfaceERC1155): boolPayload(true),
			},
			StandardERC1155,
		},
		{
			"neither responds",
			map[string]string{},
			StandardUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			node := &fakeNode{calls: tc.calls}
			client := node.client(t)

			if got := DetectNFTStandard(context.Background(), client, contractAddr); got != tc.want {
				t.Errorf("standard = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSupportedInterfaces_FailuresMeanUnsupported(t *testing.T) {
	node := &fakeNode{
		calls: map[string]string{
			supportsPrefix(IfaceERC165):  boolPayload(true),
			supportsPrefix(IfaceERC721):  boolPayload(true),
			supportsPrefix(IfaceERC2981): boolPayload(true),
			// everything else reverts
		},
	}
	client := node.client(t)

	supported := SupportedInterfaces(context.Background(), client, contractAddr)

	if len(supported) != len(KnownInterfaces) {
		t.Fatalf("map size = %d, want %d", len(supported), len(KnownInterfaces))
	}
	if !supported[IfaceERC165.Name] || !supported[IfaceERC721.Name] || !supported[IfaceERC2981.Name] {
		t.Errorf("expected ERC-165/721/2981 supported: %v", supported)
	}
	if supported[IfaceERC1155.Name] || supported[IfaceERC4907.Name] {
		t.Errorf("reverting probes must read as unsupported: %v", supported)
	}
}

// Copyright 2025 Tokenlens
//
// Token and contract URI retrieval

package detect

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenlens/tokenlens/pkg/ethereum"
)

// TokenURIs holds the raw URI call results for one token.
type TokenURIs struct {
	TokenURI    ethereum.Result
	ContractURI ethereum.Result
}

// FetchTokenURIs batches the standard-appropriate token URI call together
// with contractURI(). ERC-1155 {id} placeholders are substituted before the
// URIs are returned.
func FetchTokenURIs(ctx context.Context, client *ethereum.Client, contract common.Address, tokenID *big.Int, standard NFTStandard) TokenURIs {
	method := "tokenURI"
	if standard == StandardERC1155 {
		method = "uri"
	}

	results := client.Batch(ctx, []ethereum.ContractCall{
		{To: contract, ABI: tokenURIABI, Method: method, Args: []interface{}{tokenID}},
		{To: contract, ABI: tokenURIABI, Method: "contractURI"},
	})

	uris := TokenURIs{TokenURI: results[0], ContractURI: results[1]}

	if standard == StandardERC1155 && uris.TokenURI.Success {
		if raw, ok := uris.TokenURI.String(0); ok {
			uris.TokenURI.Values[0] = SubstituteTokenID(raw, tokenID)
		}
	}
	return uris
}

// ContractURICall builds a standalone contractURI() call for contract-level
// inspections.
func ContractURICall(contract common.Address) ethereum.ContractCall {
	return ethereum.ContractCall{To: contract, ABI: tokenURIABI, Method: "contractURI"}
}

// SubstituteTokenID replaces every {id} or {ID} placeholder with the token
// id as a 64-character lower-case hex string, per the ERC-1155 metadata URI
// rule. Substitution happens exactly once, before any resolution.
func SubstituteTokenID(uri string, tokenID *big.Int) string {
	if !strings.Contains(uri, "{id}") && !strings.Contains(uri, "{ID}") {
		return uri
	}
	hexID := fmt.Sprintf("%064x", tokenID)
	uri = strings.ReplaceAll(uri, "{id}", hexID)
	return strings.ReplaceAll(uri, "{ID}", hexID)
}

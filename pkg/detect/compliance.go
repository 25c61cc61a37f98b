// Copyright 2025 Tokenlens
//
// Standards compliance checks for supported interfaces

package detect

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenlens/tokenlens/pkg/ethereum"
)

// testSalePrice is the sale price used to exercise royaltyInfo: 1 ETH in wei.
var testSalePrice = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// CheckCompliance runs a bespoke batch per supported interface and collects
// per-field pass/fail/error statuses. The overall status is fail when any
// sub-field fails.
func CheckCompliance(ctx context.Context, client *ethereum.Client, contract common.Address, tokenID *big.Int, supported map[string]bool) ComplianceReport {
	report := ComplianceReport{OverallStatus: CompliancePass}

	if supported[IfaceERC721.Name] {
		report.ERC721 = checkERC721(ctx, client, contract, tokenID, supported[IfaceERC721Enumerable.Name])
	}
	if supported[IfaceERC2981.Name] {
		report.ERC2981 = checkERC2981(ctx, client, contract, tokenID)
	}
	if supported[IfaceERC4907.Name] {
		report.ERC4907 = checkERC4907(ctx, client, contract, tokenID)
	}

	if hasComplianceFailure(report) {
		report.OverallStatus = ComplianceFail
	}
	return report
}

func checkERC721(ctx context.Context, client *ethereum.Client, contract common.Address, tokenID *big.Int, enumerable bool) *ERC721Compliance {
	calls := []ethereum.ContractCall{
		{To: contract, ABI: complianceABI, Method: "name"},
		{To: contract, ABI: complianceABI, Method: "symbol"},
		{To: contract, ABI: complianceABI, Method: "ownerOf", Args: []interface{}{tokenID}},
	}
	if enumerable {
		calls = append(calls, ethereum.ContractCall{To: contract, ABI: complianceABI, Method: "totalSupply"})
	}

	results := client.Batch(ctx, calls)
	out := &ERC721Compliance{}

	if name, ok := results[0].String(0); ok {
		out.Name = name
		out.NameStatus = passUnless(strings.TrimSpace(name) == "")
	} else {
		out.NameStatus = ComplianceError
	}

	if symbol, ok := results[1].String(0); ok {
		out.Symbol = symbol
		out.SymbolStatus = passUnless(strings.TrimSpace(symbol) == "")
	} else {
		out.SymbolStatus = ComplianceError
	}

	if owner, ok := results[2].Address(0); ok {
		if owner != (common.Address{}) {
			out.OwnerOf = ethereum.OptionalAddress(owner)
			out.OwnerOfStatus = CompliancePass
		} else {
			out.OwnerOfStatus = ComplianceFail
		}
	} else {
		out.OwnerOfStatus = ComplianceError
	}

	if enumerable {
		if supply, ok := results[3].BigInt(0); ok {
			out.TotalSupply = supply
			out.TotalSupplyStatus = passUnless(supply.Sign() <= 0)
		} else {
			out.TotalSupplyStatus = ComplianceError
		}
	}

	return out
}

func checkERC2981(ctx context.Context, client *ethereum.Client, contract common.Address, tokenID *big.Int) *ERC2981Compliance {
	result := client.Call(ctx, ethereum.ContractCall{
		To:     contract,
		ABI:    complianceABI,
		Method: "royaltyInfo",
		Args:   []interface{}{tokenID, testSalePrice},
	})

	out := &ERC2981Compliance{SalePriceTested: testSalePrice}

	recipient, recipientOK := result.Address(0)
	amount, amountOK := result.BigInt(1)
	if !recipientOK || !amountOK {
		out.RecipientStatus = ComplianceError
		out.AmountStatus = ComplianceError
		return out
	}

	if recipient != (common.Address{}) {
		out.Recipient = ethereum.OptionalAddress(recipient)
		out.RecipientStatus = CompliancePass
	} else {
		out.RecipientStatus = ComplianceFail
	}

	// The royalty must not exceed the sale price and is capped at 50%.
	out.RoyaltyAmount = amount
	halfPrice := new(big.Int).Div(testSalePrice, big.NewInt(2))
	out.AmountStatus = passUnless(amount.Cmp(testSalePrice) > 0 || amount.Cmp(halfPrice) > 0)

	return out
}

func checkERC4907(ctx context.Context, client *ethereum.Client, contract common.Address, tokenID *big.Int) *ERC4907Compliance {
	results := client.Batch(ctx, []ethereum.ContractCall{
		{To: contract, ABI: complianceABI, Method: "userOf", Args: []interface{}{tokenID}},
		{To: contract, ABI: complianceABI, Method: "userExpires", Args: []interface{}{tokenID}},
	})
	userResult, expiresResult := results[0], results[1]

	out := &ERC4907Compliance{}

	user, userOK := userResult.Address(0)
	if userOK {
		// Zero user is valid: the token simply has no renter.
		out.UserOf = ethereum.OptionalAddress(user)
		out.UserStatus = CompliancePass
	} else {
		out.UserStatus = ComplianceError
	}

	if expires, ok := expiresResult.BigInt(0); ok {
		out.UserExpires = expires
		out.ExpiresStatus = CompliancePass

		if userOK && user != (common.Address{}) {
			if now, err := client.LatestBlockTimestamp(ctx); err == nil {
				out.RentalActive = expires.Cmp(new(big.Int).SetUint64(now)) > 0
			}
		}
	} else {
		out.ExpiresStatus = ComplianceError
	}

	return out
}

func passUnless(failed bool) ComplianceStatus {
	if failed {
		return ComplianceFail
	}
	return CompliancePass
}

func hasComplianceFailure(report ComplianceReport) bool {
	statuses := []ComplianceStatus{}
	if r := report.ERC721; r != nil {
		statuses = append(statuses, r.NameStatus, r.SymbolStatus, r.OwnerOfStatus, r.TotalSupplyStatus)
	}
	if r := report.ERC2981; r != nil {
		statuses = append(statuses, r.RecipientStatus, r.AmountStatus)
	}
	if r := report.ERC4907; r != nil {
		statuses = append(statuses, r.UserStatus, r.ExpiresStatus)
	}
	for _, s := range statuses {
		if s == ComplianceFail {
			return true
		}
	}
	return false
}

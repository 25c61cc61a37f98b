// Copyright 2025 Tokenlens
//
// Detector output records

package detect

import (
	"math/big"

	"github.com/tokenlens/tokenlens/pkg/ethereum"
)

// NFTStandard identifies the token standard a contract implements.
type NFTStandard string

const (
	StandardERC721  NFTStandard = "ERC-721"
	StandardERC1155 NFTStandard = "ERC-1155"
	StandardUnknown NFTStandard = "unknown"
)

// ProxyStandard identifies the proxy pattern a contract follows.
type ProxyStandard string

const (
	ProxyNone        ProxyStandard = "not_proxy"
	ProxyEIP1167     ProxyStandard = "eip_1167_minimal"
	ProxyEIP1967     ProxyStandard = "eip_1967_transparent"
	ProxyEIP1822UUPS ProxyStandard = "eip_1822_uups"
	ProxyBeacon      ProxyStandard = "beacon"
	ProxyDiamond     ProxyStandard = "eip_2535_diamond"
	ProxyCustom      ProxyStandard = "custom"
)

// ProxyInfo describes a contract's proxy shape.
type ProxyInfo struct {
	IsProxy               bool               `json:"is_proxy"`
	Standard              ProxyStandard      `json:"standard"`
	ImplementationAddress *ethereum.Address  `json:"implementation_address,omitempty"`
	AdminAddress          *ethereum.Address  `json:"admin_address,omitempty"`
	BeaconAddress         *ethereum.Address  `json:"beacon_address,omitempty"`
	FacetAddresses        []ethereum.Address `json:"facet_addresses,omitempty"`
	IsUpgradeable         bool               `json:"is_upgradeable"`
}

// AccessControlType classifies the access-control pattern.
type AccessControlType string

const (
	AccessControlNone             AccessControlType = "none"
	AccessControlSimpleOwner      AccessControlType = "simple_owner"
	AccessControlOwnable          AccessControlType = "ownable"
	AccessControlRoleBased        AccessControlType = "role_based"
	AccessControlRoleBasedOwnable AccessControlType = "access_control_ownable"
	AccessControlTimelock         AccessControlType = "timelock"
	AccessControlCustom           AccessControlType = "custom"
)

// IsRoleBased reports whether the type uses OpenZeppelin-style roles.
func (t AccessControlType) IsRoleBased() bool {
	return t == AccessControlRoleBased || t == AccessControlRoleBasedOwnable
}

// GovernanceType classifies who is behind a control address.
type GovernanceType string

const (
	GovernanceEOA       GovernanceType = "eoa"
	GovernanceContract  GovernanceType = "contract"
	GovernanceMultisig  GovernanceType = "multisig"
	GovernanceTimelock  GovernanceType = "timelock"
	GovernanceRenounced GovernanceType = "renounced"
	GovernanceUnknown   GovernanceType = "unknown"
)

// AccessControlInfo describes who controls a contract and how.
type AccessControlInfo struct {
	AccessControlType AccessControlType `json:"access_control_type"`
	GovernanceType    GovernanceType    `json:"governance_type"`
	HasOwner          bool              `json:"has_owner"`
	OwnerAddress      *ethereum.Address `json:"owner_address,omitempty"`
	OwnerName         string            `json:"owner_name,omitempty"`
	HasRoles          bool              `json:"has_roles"`
	AdminAddress      *ethereum.Address `json:"admin_address,omitempty"`
	AdminName         string            `json:"admin_name,omitempty"`
	TimelockDelay     *big.Int          `json:"timelock_delay,omitempty"`
}

// ComplianceStatus is the outcome of one compliance check field.
type ComplianceStatus string

const (
	CompliancePass  ComplianceStatus = "pass"
	ComplianceFail  ComplianceStatus = "fail"
	ComplianceError ComplianceStatus = "error"
)

// ERC721Compliance checks the core metadata surface of ERC-721.
type ERC721Compliance struct {
	Name              string            `json:"name,omitempty"`
	NameStatus        ComplianceStatus  `json:"name_status,omitempty"`
	Symbol            string            `json:"symbol,omitempty"`
	SymbolStatus      ComplianceStatus  `json:"symbol_status,omitempty"`
	OwnerOf           *ethereum.Address `json:"owner_of,omitempty"`
	OwnerOfStatus     ComplianceStatus  `json:"owner_of_status,omitempty"`
	TotalSupply       *big.Int          `json:"total_supply,omitempty"`
	TotalSupplyStatus ComplianceStatus  `json:"total_supply_status,omitempty"`
}

// ERC2981Compliance checks the royalty interface against a test sale price.
type ERC2981Compliance struct {
	Recipient       *ethereum.Address `json:"recipient,omitempty"`
	RecipientStatus ComplianceStatus  `json:"recipient_status,omitempty"`
	RoyaltyAmount   *big.Int          `json:"royalty_amount,omitempty"`
	AmountStatus    ComplianceStatus  `json:"amount_status,omitempty"`
	SalePriceTested *big.Int          `json:"sale_price_tested,omitempty"`
}

// ERC4907Compliance checks the rental extension. A zero user is valid and
// means no current renter.
type ERC4907Compliance struct {
	UserOf        *ethereum.Address `json:"user_of,omitempty"`
	UserStatus    ComplianceStatus  `json:"user_status,omitempty"`
	UserExpires   *big.Int          `json:"user_expires,omitempty"`
	ExpiresStatus ComplianceStatus  `json:"expires_status,omitempty"`
	RentalActive  bool              `json:"rental_active"`
}

// ComplianceReport aggregates per-interface sub-reports.
type ComplianceReport struct {
	ERC721        *ERC721Compliance  `json:"erc721,omitempty"`
	ERC2981       *ERC2981Compliance `json:"erc2981,omitempty"`
	ERC4907       *ERC4907Compliance `json:"erc4907,omitempty"`
	OverallStatus ComplianceStatus   `json:"overall_status"`
}

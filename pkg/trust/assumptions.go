// Copyright 2025 Tokenlens
//
// Trust assumptions, key risks, and strengths derived from inspection
// findings

package trust

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tokenlens/tokenlens/pkg/uri"
)

// componentStorage summarises how one media component is hosted, for
// assumption text.
type componentStorage struct {
	protocol    uri.Protocol
	isGateway   bool
	level       uri.GatewayLevel
	host        string
	centralized bool
}

func storageOf(info *uri.URLInfo) componentStorage {
	if info == nil {
		return componentStorage{protocol: uri.ProtocolNone}
	}
	s := componentStorage{
		protocol:  info.Protocol,
		isGateway: info.IsGateway,
		level:     info.GatewayLevel,
		host:      hostOf(info.URL),
	}
	s.centralized = s.isGateway ||
		(s.protocol == uri.ProtocolHTTP || s.protocol == uri.ProtocolHTTPS) && s.level == uri.GatewayCentralized
	return s
}

func hostOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Host
}

// buildAssumptions emits one assumption per finding: centralized or
// gateway-hosted components, non-renounced owners, upgradeable proxies, and
// the chain itself when off mainnet.
func buildAssumptions(in Input, trustlessness TrustlessnessScore, chainTrust ChainTrustScore) []Assumption {
	assumptions := []Assumption{}

	var metadataInfo, imageInfo, animationInfo *uri.URLInfo
	if in.Data != nil {
		metadataInfo = in.Data.TokenURI
		imageInfo = in.Data.Image
		animationInfo = in.Data.AnimationURL
	}

	metadata := storageOf(metadataInfo)
	metadataSuffix := ""
	if metadata.centralized {
		metadataSuffix = " and is also affected by metadata hosting"
	}

	if metadata.centralized && metadata.host != "" {
		assumptions = append(assumptions, Assumption{
			Category:       "Data Storage",
			Description:    storageDescription("Metadata", metadata, ""),
			Severity:       SeverityHigh,
			Impact:         "NFT metadata could become inaccessible or change, affecting display and value",
			Recommendation: "Store metadata on-chain for permanence",
		})
	}

	if imageInfo != nil {
		if image := storageOf(imageInfo); image.centralized && image.host != "" {
			assumptions = append(assumptions, Assumption{
				Category:       "Data Storage",
				Description:    storageDescription("Image", image, metadataSuffix),
				Severity:       SeverityMedium,
				Impact:         "Image could become unavailable or change, affecting NFT appearance",
				Recommendation: "Store images on-chain",
			})
		} else if strings.HasPrefix(imageInfo.URL, "ipfs://") {
			assumptions = append(assumptions, Assumption{
				Category:       "Data Storage",
				Description:    "Image relies on IPFS pinning" + metadataSuffix,
				Severity:       SeverityLow,
				Impact:         "Image may disappear if not pinned",
				Recommendation: "Ensure reliable IPFS pinning",
			})
		}
	}

	if animationInfo != nil {
		if animation := storageOf(animationInfo); animation.centralized && animation.host != "" {
			assumptions = append(assumptions, Assumption{
				Category:       "Data Storage",
				Description:    storageDescription("Animation", animation, metadataSuffix),
				Severity:       SeverityMedium,
				Impact:         "Animation could become unavailable or change",
				Recommendation: "Store animations on-chain",
			})
		}
	}

	if trustlessness.HasOwner && trustlessness.OwnerType != "renounced" {
		ownerDisplay := trustlessness.OwnerName
		if ownerDisplay == "" {
			ownerDisplay = "contract owner"
		}
		severity := SeverityHigh
		if trustlessness.OwnerType == "multisig" || trustlessness.OwnerType == "timelock" {
			severity = SeverityMedium
		}
		assumptions = append(assumptions, Assumption{
			Category:       "Contract Control",
			Description:    fmt.Sprintf("Contract has %s as owner that might have control", ownerDisplay),
			Severity:       severity,
			Impact:         "Owner could modify contract behavior or transfer ownership",
			Recommendation: "Verify owner's intentions and track ownership changes",
		})
	}

	if trustlessness.IsUpgradeable && trustlessness.ProxyType != "" {
		assumptions = append(assumptions, Assumption{
			Category:       "Contract Control",
			Description:    fmt.Sprintf("Uses a %s proxy, the implementation might be upgraded in the future", trustlessness.ProxyType),
			Severity:       SeverityHigh,
			Impact:         "Contract logic could be completely changed via upgrade",
			Recommendation: "Monitor upgrade activities and proxy admin actions",
		})
	}

	if chainTrust.ChainID != 1 && !chainTrust.IsTestnet {
		var description string
		var severity Severity
		if chainTrust.RollupStage != "" {
			description = fmt.Sprintf("Relies on %s being operational, which is %s according to L2Beat", chainTrust.ChainName, chainTrust.RollupStage)
			if chainTrust.RollupStage == "Stage 2" {
				severity = SeverityLow
			} else {
				severity = SeverityMedium
			}
		} else {
			description = fmt.Sprintf("Relies on %s being operational, with no Stage on L2Beat", chainTrust.ChainName)
			severity = SeverityHigh
		}
		assumptions = append(assumptions, Assumption{
			Category:       "Infrastructure",
			Description:    description,
			Severity:       severity,
			Impact:         "NFT becomes inaccessible if the chain experiences issues",
			Recommendation: "Consider the chain's decentralization level for critical assets",
		})
	}

	return assumptions
}

// storageDescription phrases how a component is hosted.
func storageDescription(component string, s componentStorage, suffix string) string {
	if s.isGateway {
		switch s.level {
		case uri.GatewayIPFS:
			return fmt.Sprintf("%s uses IPFS via gateway %s; relies on the gateway and IPFS pinning%s", component, s.host, suffix)
		case uri.GatewayArweave:
			return fmt.Sprintf("%s uses Arweave via gateway %s; relies on the gateway and Arweave permanence%s", component, s.host, suffix)
		default:
			return fmt.Sprintf("%s uses gateway %s; relies on the gateway service%s", component, s.host, suffix)
		}
	}
	return fmt.Sprintf("%s is centralized and can change%s, relies on %s", component, suffix, s.host)
}

func buildRecommendations(permanence PermanenceScore, trustlessness TrustlessnessScore) []string {
	recommendations := []string{}
	if permanence.OverallScore < 6 {
		recommendations = append(recommendations, "Improve data permanence by using IPFS or on-chain storage")
	}
	if trustlessness.OverallScore < 8 && trustlessness.HasOwner {
		recommendations = append(recommendations, "Consider renouncing ownership or using time-locked governance")
	}
	return recommendations
}

func identifyKeyRisks(in Input, trustlessness TrustlessnessScore, chainTrust ChainTrustScore) []string {
	risks := []string{}

	var metadataInfo *uri.URLInfo
	if in.Data != nil {
		metadataInfo = in.Data.TokenURI
	}
	metadata := storageOf(metadataInfo)
	if (metadata.protocol == uri.ProtocolHTTP || metadata.protocol == uri.ProtocolHTTPS) && !metadata.isGateway {
		risks = append(risks, "Metadata stored on centralized server")
	}

	if trustlessness.IsUpgradeable {
		risks = append(risks, "Contract can be upgraded")
	}

	if chainTrust.ChainID != 1 && !chainTrust.IsTestnet && chainTrust.StageScore <= 4 {
		risks = append(risks, "Depends on centralized L2 infrastructure")
	}

	if len(risks) > 3 {
		risks = risks[:3]
	}
	return risks
}

func identifyStrengths(permanence PermanenceScore, trustlessness TrustlessnessScore, chainTrust ChainTrustScore) []string {
	strengths := []string{}
	if permanence.IsFullyOnchain {
		strengths = append(strengths, "All data stored on-chain")
	}
	if !trustlessness.HasOwner {
		strengths = append(strengths, "No contract owner")
	}
	if !trustlessness.IsUpgradeable {
		strengths = append(strengths, "Immutable contract")
	}
	if chainTrust.ChainID == 1 {
		strengths = append(strengths, "Deployed on Ethereum mainnet")
	}
	return strengths
}

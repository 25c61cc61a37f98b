// Copyright 2025 Tokenlens
//
// Trust analyzer: composes detector and media outputs with the chain-trust
// table into permanence, trustlessness, and overall scores. Pure function;
// the only I/O is loading the embedded stage table once.

package trust

import (
	"math"
	"strconv"
	"time"

	"github.com/tokenlens/tokenlens/pkg/chains"
	"github.com/tokenlens/tokenlens/pkg/detect"
	"github.com/tokenlens/tokenlens/pkg/uri"
)

// Composition weights for the overall score.
const (
	permanenceWeight    = 0.7
	trustlessnessWeight = 0.3
)

// Chain penalties subtracted from the permanence base score. Ethereum
// mainnet and testnets escape the penalty entirely.
var chainPenalties = map[string]float64{
	"Stage 2": 0.5,
	"Stage 1": 1.0,
	"Stage 0": 1.5,
}

const unknownChainPenalty = 2.0

// Stage scores for the chain-trust record.
var stageScores = map[string]int{
	"Stage 2": 10,
	"Stage 1": 7,
	"Stage 0": 4,
}

const unknownStageScore = 2

// Input is the assembled inspection state the analyzer consumes.
type Input struct {
	Chain      chains.ChainInfo
	ChainKnown bool

	Data         *uri.DataReport
	ContractData *uri.ContractDataReport

	Proxy         *detect.ProxyInfo
	AccessControl *detect.AccessControlInfo
}

// Analyzer scores inspections against the rollup stage table.
type Analyzer struct {
	stages map[string]RollupInfo
}

// NewAnalyzer loads the embedded chain-trust table.
func NewAnalyzer() (*Analyzer, error) {
	stages, err := loadRollupStages()
	if err != nil {
		return nil, err
	}
	return &Analyzer{stages: stages}, nil
}

// Analyze produces the complete trust analysis for one token.
func (a *Analyzer) Analyze(in Input) *AnalysisResult {
	permanence := a.analyzePermanence(in)
	trustlessness := analyzeTrustlessness(in)
	chainTrust := a.analyzeChainTrust(in)

	raw := float64(permanence.OverallScore)*permanenceWeight +
		float64(trustlessness.OverallScore)*trustlessnessWeight
	overall := clampScore(int(math.Round(raw)))

	return &AnalysisResult{
		OverallScore:     overall,
		OverallLevel:     scoreToLevel(overall),
		Permanence:       permanence,
		Trustlessness:    trustlessness,
		ChainTrust:       chainTrust,
		TrustAssumptions: buildAssumptions(in, trustlessness, chainTrust),
		Recommendations:  buildRecommendations(permanence, trustlessness),
		KeyRisks:         identifyKeyRisks(in, trustlessness, chainTrust),
		Strengths:        identifyStrengths(permanence, trustlessness, chainTrust),
		Weights:          Weights{Permanence: permanenceWeight, Trustlessness: trustlessnessWeight},
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
	}
}

// analyzePermanence applies the weakest-link scoring discipline: each media
// component is gated by the score of its pointer.
func (a *Analyzer) analyzePermanence(in Input) PermanenceScore {
	var tokenURIInfo, imageInfo, animationInfo *uri.URLInfo
	if in.Data != nil {
		tokenURIInfo = in.Data.TokenURI
		imageInfo = in.Data.Image
		animationInfo = in.Data.AnimationURL
	}
	var contractURIInfo *uri.URLInfo
	if in.ContractData != nil {
		contractURIInfo = in.ContractData.ContractURI
	}

	metadataScore := gatedProtocolScore(tokenURIInfo)
	imageScore := gatedProtocolScore(imageInfo)
	animationScore := gatedProtocolScore(animationInfo)
	contractScore := gatedProtocolScore(contractURIInfo)

	// A metadata URI on HTTP can silently change which image is served,
	// so the image is never better than its pointer.
	gatedImage := 0
	if imageScore > 0 {
		gatedImage = min(metadataScore, imageScore)
	}
	gatedAnimation := 0
	if animationScore > 0 {
		gatedAnimation = min(metadataScore, animationScore)
	}

	var tokenComponents []int
	if gatedImage > 0 {
		tokenComponents = append(tokenComponents, gatedImage)
	}
	if gatedAnimation > 0 {
		tokenComponents = append(tokenComponents, gatedAnimation)
	}

	tokenScore := 0.0
	if len(tokenComponents) > 0 {
		sum := 0
		for _, s := range tokenComponents {
			sum += s
		}
		tokenScore = float64(sum) / float64(len(tokenComponents))
	}

	base := tokenScore
	if contractScore > 0 {
		base = 0.9*tokenScore + 0.1*float64(contractScore)
	}

	penalty := a.chainPenalty(in)
	overall := clampScore(int(math.Round(base - penalty)))

	isFullyOnchain := metadataScore == 10 &&
		(imageScore == 0 || imageScore == 10) &&
		(animationScore == 0 || animationScore == 10) &&
		(contractScore == 0 || contractScore == 10)

	// Weakest component, iterated in fixed order so ties are stable.
	componentScores := []struct {
		name  string
		score int
		have  bool
	}{
		{"metadata", metadataScore, true},
		{"image", gatedImage, gatedImage > 0},
		{"animation", gatedAnimation, gatedAnimation > 0},
		{"contract_metadata", contractScore, contractScore > 0},
	}
	weakest := "metadata"
	weakestScore := metadataScore
	for _, c := range componentScores[1:] {
		if c.have && c.score < weakestScore {
			weakest = c.name
			weakestScore = c.score
		}
	}

	return PermanenceScore{
		OverallScore:          overall,
		MetadataScore:         metadataScore,
		ImageScore:            gatedImage,
		AnimationScore:        gatedAnimation,
		ContractMetadataScore: contractScore,
		ChainPenalty:          penalty,
		IsFullyOnchain:        isFullyOnchain,
		HasExternalDeps:       hasExternalDependencies(in.Data),
		WeakestComponent:      weakest,
		ProtocolBreakdown: map[string]string{
			"metadata":          protocolName(tokenURIInfo),
			"image":             protocolName(imageInfo),
			"animation":         protocolName(animationInfo),
			"contract_metadata": protocolName(contractURIInfo),
		},
	}
}

// gatedProtocolScore returns the protocol score of a URI, additionally
// gated by the weakest external dependency when the document is not fully
// on-chain. Unset components score 0.
func gatedProtocolScore(info *uri.URLInfo) int {
	if info == nil {
		return 0
	}
	score := info.Protocol.Score()
	if deps := info.ExternalDependencies; deps != nil && !deps.IsFullyOnchain {
		score = min(score, deps.MinProtocolScore)
	}
	return score
}

func protocolName(info *uri.URLInfo) string {
	if info == nil {
		return string(uri.ProtocolNone)
	}
	return string(info.Protocol)
}

func hasExternalDependencies(data *uri.DataReport) bool {
	if data == nil {
		return false
	}
	for _, info := range []*uri.URLInfo{data.Image, data.AnimationURL} {
		if info != nil && info.ExternalDependencies != nil && !info.ExternalDependencies.IsFullyOnchain {
			return true
		}
	}
	return false
}

// chainPenalty derives the permanence penalty from the stage table.
// Testnets bypass the penalty; the testnet flag is reported separately.
func (a *Analyzer) chainPenalty(in Input) float64 {
	if in.Chain.IsTestnet {
		return 0.0
	}
	if in.Chain.ChainID == 1 {
		return 0.0
	}
	stage := a.stageFor(in.Chain.ChainID)
	if penalty, ok := chainPenalties[stage]; ok {
		return penalty
	}
	return unknownChainPenalty
}

func (a *Analyzer) stageFor(chainID uint64) string {
	if info, ok := a.stages[formatChainID(chainID)]; ok {
		return info.Stage
	}
	return ""
}

// analyzeTrustlessness composes the access-control and upgradeability
// sub-scores.
func analyzeTrustlessness(in Input) TrustlessnessScore {
	acScore, hasOwner, ownerType := scoreAccessControl(in.AccessControl)
	upScore, isUpgradeable, proxyType := scoreUpgradeability(in.Proxy)

	overall := clampScore(int(math.Round(0.7*float64(acScore) + 0.3*float64(upScore))))

	out := TrustlessnessScore{
		OverallScore:        overall,
		AccessControlScore:  acScore,
		UpgradeabilityScore: upScore,
		HasOwner:            hasOwner,
		OwnerType:           ownerType,
		IsUpgradeable:       isUpgradeable,
		ProxyType:           proxyType,
	}
	if ac := in.AccessControl; ac != nil {
		out.OwnerName = ac.OwnerName
		out.AdminName = ac.AdminName
		out.TimelockDelay = ac.TimelockDelay
	}
	return out
}

func scoreAccessControl(ac *detect.AccessControlInfo) (score int, hasOwner bool, ownerType string) {
	if ac == nil {
		return 10, false, "none"
	}

	hasOwner = ac.HasOwner || ac.HasRoles
	if !hasOwner && ac.GovernanceType != detect.GovernanceRenounced {
		return 10, false, "none"
	}

	switch ac.GovernanceType {
	case detect.GovernanceRenounced:
		score, ownerType = 10, "renounced"
	case detect.GovernanceMultisig:
		score, ownerType = 6, "multisig"
	case detect.GovernanceTimelock:
		score, ownerType = 8, "timelock"
	case detect.GovernanceContract:
		score, ownerType = 5, "contract"
	case detect.GovernanceEOA:
		score, ownerType = 3, "eoa"
	default:
		score, ownerType = 4, "unknown"
	}

	if ac.AccessControlType.IsRoleBased() {
		score++
	}
	if ac.AccessControlType == detect.AccessControlTimelock {
		score += 2
	}
	return clampScore(score), hasOwner, ownerType
}

func scoreUpgradeability(proxy *detect.ProxyInfo) (score int, isUpgradeable bool, proxyType string) {
	if proxy == nil || !proxy.IsProxy {
		return 10, false, ""
	}

	proxyType = string(proxy.Standard)

	if proxy.Standard == detect.ProxyEIP1167 {
		return 9, false, proxyType
	}
	if !proxy.IsUpgradeable {
		return 10, false, proxyType
	}

	switch proxy.Standard {
	case detect.ProxyEIP1967:
		score = 3
	case detect.ProxyEIP1822UUPS, detect.ProxyBeacon, detect.ProxyDiamond, detect.ProxyCustom:
		score = 2
	default:
		score = 2
	}
	return score, true, proxyType
}

// analyzeChainTrust builds the chain-level record from the stage table.
func (a *Analyzer) analyzeChainTrust(in Input) ChainTrustScore {
	out := ChainTrustScore{
		ChainID:   in.Chain.ChainID,
		ChainName: in.Chain.Name,
		IsTestnet: in.Chain.IsTestnet,
	}
	if !in.ChainKnown {
		out.StageScore = unknownStageScore
		return out
	}
	if in.Chain.ChainID == 1 {
		out.StageScore = 10
		return out
	}
	out.RollupStage = a.stageFor(in.Chain.ChainID)
	if score, ok := stageScores[out.RollupStage]; ok {
		out.StageScore = score
	} else {
		out.StageScore = unknownStageScore
	}
	return out
}

func scoreToLevel(score int) Level {
	switch {
	case score >= 9:
		return LevelExcellent
	case score >= 7:
		return LevelGood
	case score >= 5:
		return LevelModerate
	case score >= 3:
		return LevelPoor
	default:
		return LevelCritical
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func formatChainID(chainID uint64) string {
	return strconv.FormatUint(chainID, 10)
}

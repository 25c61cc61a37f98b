// Copyright 2025 Tokenlens
//
// Inspection orchestrator: selects an endpoint, runs the detectors and the
// media pipeline concurrently, and assembles the final report.

package inspector

import (
	"context"
	"encoding/json"
	"math/big"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tokenlens/tokenlens/pkg/chains"
	"github.com/tokenlens/tokenlens/pkg/detect"
	"github.com/tokenlens/tokenlens/pkg/ethereum"
	"github.com/tokenlens/tokenlens/pkg/trust"
	"github.com/tokenlens/tokenlens/pkg/uri"
)

// defaultDeadline is the sum of the per-phase budgets: RPC probing, the
// detector batches, and the media fetches.
const defaultDeadline = 90 * time.Second

// Inspector is the single entry point for token and contract inspections.
type Inspector struct {
	registry *chains.Registry
	resolver *uri.Resolver
	analyzer *uri.Analyzer
	trust    *trust.Analyzer
	names    detect.NameResolver
	log      *logrus.Logger
}

// Config wires the inspector's collaborators.
type Config struct {
	Registry     *chains.Registry
	Resolver     *uri.Resolver
	Analyzer     *uri.Analyzer
	Trust        *trust.Analyzer
	NameResolver detect.NameResolver
	Logger       *logrus.Logger
}

// New builds an inspector, constructing default collaborators for any left
// nil.
func New(cfg Config) (*Inspector, error) {
	if cfg.Registry == nil {
		registry, err := chains.NewRegistry()
		if err != nil {
			return nil, err
		}
		cfg.Registry = registry
	}
	if cfg.Resolver == nil {
		cfg.Resolver = uri.NewResolver(uri.ResolverOptions{})
	}
	if cfg.Analyzer == nil {
		cfg.Analyzer = uri.NewAnalyzer(uri.AnalyzerOptions{})
	}
	if cfg.Trust == nil {
		analyzer, err := trust.NewAnalyzer()
		if err != nil {
			return nil, err
		}
		cfg.Trust = analyzer
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Inspector{
		registry: cfg.Registry,
		resolver: cfg.Resolver,
		analyzer: cfg.Analyzer,
		trust:    cfg.Trust,
		names:    cfg.NameResolver,
		log:      cfg.Logger,
	}, nil
}

// Registry exposes the chain registry for read-only use by callers.
func (i *Inspector) Registry() *chains.Registry { return i.registry }

// InspectToken inspects one token. Only validation failures,
// ErrUnsupportedChain and ErrNoWorkingRpc are returned as errors; every downstream failure is
// absorbed into the report.
func (i *Inspector) InspectToken(ctx context.Context, chainID uint64, contract ethereum.Address, tokenID *big.Int, opts Options) (*TokenInfo, error) {
	if tokenID == nil || tokenID.Sign() < 0 {
		return nil, ErrInvalidTokenID
	}

	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = defaultDeadline
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	client, chainInfo, chainKnown, err := i.connect(ctx, chainID, opts)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	info := &TokenInfo{
		ChainID:         chainID,
		ContractAddress: contract,
		TokenID:         tokenID,
		RPCEndpoint:     client.URL(),
	}

	// Standard detection and URI retrieval are strictly ordered; the
	// remaining detectors fan out from here.
	info.Standard = detect.DetectNFTStandard(ctx, client, contract.Address)

	uris := detect.FetchTokenURIs(ctx, client, contract.Address, tokenID, info.Standard)
	if tokenURI, ok := uris.TokenURI.String(0); ok {
		info.TokenURI = tokenURI
	}
	if contractURI, ok := uris.ContractURI.String(0); ok {
		info.ContractURI = contractURI
	}

	var supported map[string]bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if info.TokenURI != "" {
			info.Metadata = i.fetchMetadata(gctx, info.TokenURI)
		}
		return nil
	})
	g.Go(func() error {
		if info.ContractURI != "" {
			info.ContractMetadata = i.fetchContractMetadata(gctx, info.ContractURI)
		}
		return nil
	})
	g.Go(func() error {
		proxy := detect.DetectProxy(gctx, client, contract.Address)
		info.ProxyInfo = &proxy
		return nil
	})
	g.Go(func() error {
		ac := detect.DetectAccessControl(gctx, client, contract.Address, i.names)
		info.AccessControlInfo = &ac
		return nil
	})
	g.Go(func() error {
		supported = detect.SupportedInterfaces(gctx, client, contract.Address)
		return nil
	})
	g.Wait()

	info.SupportedInterfaces = supportedNames(supported)

	if opts.AnalyzeMedia {
		i.analyzeMedia(ctx, info, opts)
	}

	if len(supported) > 0 {
		report := detect.CheckCompliance(ctx, client, contract.Address, tokenID, supported)
		info.ComplianceReport = &report
	}

	if opts.AnalyzeTrust {
		result := i.trust.Analyze(trust.Input{
			Chain:         chainInfo,
			ChainKnown:    chainKnown,
			Data:          info.DataReport,
			ContractData:  info.ContractDataReport,
			Proxy:         info.ProxyInfo,
			AccessControl: info.AccessControlInfo,
		})
		info.TrustAnalysis = result
	}

	return info, nil
}

// InspectContract inspects contract-level state only.
func (i *Inspector) InspectContract(ctx context.Context, chainID uint64, contract ethereum.Address, opts Options) (*ContractInfo, error) {
	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = defaultDeadline
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	client, _, _, err := i.connect(ctx, chainID, opts)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	info := &ContractInfo{
		ChainID:         chainID,
		ContractAddress: contract,
		RPCEndpoint:     client.URL(),
	}

	contractURIResult := client.Call(ctx, detect.ContractURICall(contract.Address))
	if contractURI, ok := contractURIResult.String(0); ok {
		info.ContractURI = contractURI
	}

	var supported map[string]bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if info.ContractURI != "" {
			info.ContractMetadata = i.fetchContractMetadata(gctx, info.ContractURI)
		}
		return nil
	})
	g.Go(func() error {
		proxy := detect.DetectProxy(gctx, client, contract.Address)
		info.ProxyInfo = &proxy
		return nil
	})
	g.Go(func() error {
		ac := detect.DetectAccessControl(gctx, client, contract.Address, i.names)
		info.AccessControlInfo = &ac
		return nil
	})
	g.Go(func() error {
		supported = detect.SupportedInterfaces(gctx, client, contract.Address)
		return nil
	})
	g.Wait()

	info.SupportedInterfaces = supportedNames(supported)

	if opts.AnalyzeMedia && info.ContractURI != "" {
		analyzer := i.analyzer.WithTimeout(opts.FetchTimeout)
		info.ContractDataReport = buildContractDataReport(ctx, analyzer, info.ContractURI, info.ContractMetadata)
	}

	return info, nil
}

// connect selects a working endpoint and dials it. RPC selection is the
// only fatal phase.
func (i *Inspector) connect(ctx context.Context, chainID uint64, opts Options) (*ethereum.Client, chains.ChainInfo, bool, error) {
	chainInfo, chainKnown := i.registry.Chain(chainID)

	rpcURL := opts.RPCURL
	if rpcURL == "" {
		if !chainKnown {
			return nil, chainInfo, false, ErrUnsupportedChain
		}
		rpcURL = i.registry.SelectWorkingRPC(ctx, chainID)
		if rpcURL == "" {
			return nil, chainInfo, chainKnown, ErrNoWorkingRpc
		}
	}
	if !chainKnown {
		chainInfo = chains.ChainInfo{ChainID: chainID}
	}

	client, err := ethereum.Dial(ctx, rpcURL)
	if err != nil {
		return nil, chainInfo, chainKnown, ErrNoWorkingRpc
	}

	i.log.WithFields(logrus.Fields{"chain_id": chainID, "rpc": rpcURL}).Debug("connected to RPC endpoint")
	return client, chainInfo, chainKnown, nil
}

func (i *Inspector) fetchMetadata(ctx context.Context, tokenURI string) *Metadata {
	var md Metadata
	if err := i.resolver.ResolveJSON(ctx, tokenURI, &md); err != nil {
		i.log.WithError(err).WithField("uri", truncateForLog(tokenURI)).Debug("failed to resolve token metadata")
		return nil
	}
	return &md
}

func (i *Inspector) fetchContractMetadata(ctx context.Context, contractURI string) *ContractMetadata {
	var md ContractMetadata
	if err := i.resolver.ResolveJSON(ctx, contractURI, &md); err != nil {
		i.log.WithError(err).WithField("uri", truncateForLog(contractURI)).Debug("failed to resolve contract metadata")
		return nil
	}
	return &md
}

// analyzeMedia classifies the token URI and every referenced media field
// concurrently, then does the same for contract-level metadata.
func (i *Inspector) analyzeMedia(ctx context.Context, info *TokenInfo, opts Options) {
	analyzer := i.analyzer.WithTimeout(opts.FetchTimeout)

	if info.TokenURI != "" && info.Metadata != nil {
		report := &uri.DataReport{}

		fields := []struct {
			target **uri.URLInfo
			value  string
		}{
			{&report.TokenURI, info.TokenURI},
			{&report.Image, info.Metadata.Image},
			{&report.ImageData, info.Metadata.ImageData},
			{&report.AnimationURL, info.Metadata.AnimationURL},
			{&report.ExternalURL, info.Metadata.ExternalURL},
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, field := range fields {
			if field.value == "" {
				continue
			}
			g.Go(func() error {
				*field.target = analyzer.AnalyzeMedia(gctx, field.value)
				return nil
			})
		}
		g.Wait()

		info.DataReport = report
	}

	if info.ContractURI != "" && info.ContractMetadata != nil {
		info.ContractDataReport = buildContractDataReport(ctx, analyzer, info.ContractURI, info.ContractMetadata)
	}
}

func buildContractDataReport(ctx context.Context, analyzer *uri.Analyzer, contractURI string, md *ContractMetadata) *uri.ContractDataReport {
	report := &uri.ContractDataReport{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.ContractURI = analyzer.AnalyzeMedia(gctx, contractURI)
		return nil
	})
	if md != nil && md.Image != "" {
		g.Go(func() error {
			report.Image = analyzer.AnalyzeMedia(gctx, md.Image)
			return nil
		})
	}
	if md != nil && md.ExternalURL != "" {
		g.Go(func() error {
			report.ExternalURL = analyzer.AnalyzeMedia(gctx, md.ExternalURL)
			return nil
		})
	}
	g.Wait()

	return report
}

// Queryable sub-operations, each a thin wrapper over one detector.

// GetSupportedInterfaces returns the ERC-165 support map for a contract.
func (i *Inspector) GetSupportedInterfaces(ctx context.Context, chainID uint64, contract ethereum.Address, opts Options) (map[string]bool, error) {
	client, _, _, err := i.connect(ctx, chainID, opts)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return detect.SupportedInterfaces(ctx, client, contract.Address), nil
}

// GetProxyInfo runs only the proxy detector.
func (i *Inspector) GetProxyInfo(ctx context.Context, chainID uint64, contract ethereum.Address, opts Options) (*detect.ProxyInfo, error) {
	client, _, _, err := i.connect(ctx, chainID, opts)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	proxy := detect.DetectProxy(ctx, client, contract.Address)
	return &proxy, nil
}

// GetAccessControlInfo runs only the access-control detector.
func (i *Inspector) GetAccessControlInfo(ctx context.Context, chainID uint64, contract ethereum.Address, opts Options) (*detect.AccessControlInfo, error) {
	client, _, _, err := i.connect(ctx, chainID, opts)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	ac := detect.DetectAccessControl(ctx, client, contract.Address, i.names)
	return &ac, nil
}

// CheckCompliance runs the compliance checker against the interfaces the
// contract advertises.
func (i *Inspector) CheckCompliance(ctx context.Context, chainID uint64, contract ethereum.Address, tokenID *big.Int, opts Options) (*detect.ComplianceReport, error) {
	if tokenID == nil || tokenID.Sign() < 0 {
		return nil, ErrInvalidTokenID
	}
	client, _, _, err := i.connect(ctx, chainID, opts)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	supported := detect.SupportedInterfaces(ctx, client, contract.Address)
	report := detect.CheckCompliance(ctx, client, contract.Address, tokenID, supported)
	return &report, nil
}

func supportedNames(supported map[string]bool) []string {
	var names []string
	for name, ok := range supported {
		if ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// truncateForLog keeps data URIs from flooding log lines.
func truncateForLog(s string) string {
	if len(s) > 120 {
		return s[:117] + "..."
	}
	return s
}

// MarshalIndent renders a TokenInfo for CLI display.
func (t *TokenInfo) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

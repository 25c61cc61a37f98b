// Copyright 2025 Tokenlens
//
// inspect / inspect-contract / chains commands

package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tokenlens/tokenlens/pkg/ethereum"
	"github.com/tokenlens/tokenlens/pkg/inspector"
)

type inspectFlags struct {
	rpcURL       string
	chainID      uint64
	analyzeMedia bool
	analyzeTrust bool
	maxLength    int
}

func (f *inspectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.rpcURL, "rpc-url", "", "Override the RPC endpoint")
	cmd.Flags().Uint64Var(&f.chainID, "chain-id", 1, "Chain id")
	cmd.Flags().BoolVar(&f.analyzeMedia, "analyze-media", true, "Analyze media URLs")
	cmd.Flags().BoolVar(&f.analyzeTrust, "analyze-trust", true, "Run trust analysis")
	cmd.Flags().IntVar(&f.maxLength, "max-length", 100, "Maximum length for string values in output (0 = no truncation)")
}

func (f *inspectFlags) options() inspector.Options {
	return inspector.Options{
		AnalyzeMedia: f.analyzeMedia,
		AnalyzeTrust: f.analyzeTrust,
		RPCURL:       f.rpcURL,
	}
}

func newInspector() (*inspector.Inspector, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	return inspector.New(inspector.Config{Logger: log})
}

func newInspectCmd() *cobra.Command {
	flags := &inspectFlags{}

	cmd := &cobra.Command{
		Use:   "inspect <contract-address> <token-id>",
		Short: "Inspect an NFT and fetch its metadata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contract, err := ethereum.ParseAddress(args[0])
			if err != nil {
				return err
			}
			tokenID, ok := new(big.Int).SetString(args[1], 10)
			if !ok {
				return fmt.Errorf("invalid token id: %q", args[1])
			}

			insp, err := newInspector()
			if err != nil {
				return err
			}

			info, err := insp.InspectToken(cmd.Context(), flags.chainID, contract, tokenID, flags.options())
			if err != nil {
				return err
			}
			return printJSON(info, flags.maxLength)
		},
	}

	flags.register(cmd)
	return cmd
}

func newInspectContractCmd() *cobra.Command {
	flags := &inspectFlags{}

	cmd := &cobra.Command{
		Use:   "inspect-contract <contract-address>",
		Short: "Inspect contract-level metadata and control",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contract, err := ethereum.ParseAddress(args[0])
			if err != nil {
				return err
			}

			insp, err := newInspector()
			if err != nil {
				return err
			}

			info, err := insp.InspectContract(cmd.Context(), flags.chainID, contract, flags.options())
			if err != nil {
				return err
			}
			return printJSON(info, flags.maxLength)
		},
	}

	flags.register(cmd)
	return cmd
}

func newChainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List supported chains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			insp, err := newInspector()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CHAIN ID\tNAME\tTESTNET\tRPC ENDPOINTS")
			for _, chain := range insp.Registry().List() {
				fmt.Fprintf(w, "%d\t%s\t%t\t%d\n", chain.ChainID, chain.Name, chain.IsTestnet, len(chain.RPC))
			}
			return w.Flush()
		},
	}
}

// printJSON renders a result, truncating long string values (data URIs can
// run to megabytes) unless maxLength is zero.
func printJSON(v interface{}, maxLength int) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	truncated := truncateValues(decoded, maxLength)

	out, err := json.MarshalIndent(truncated, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// truncateValues shortens long strings to "start...end" recursively.
func truncateValues(v interface{}, maxLength int) interface{} {
	if maxLength <= 0 {
		return v
	}
	switch value := v.(type) {
	case map[string]interface{}:
		for k, item := range value {
			value[k] = truncateValues(item, maxLength)
		}
		return value
	case []interface{}:
		for i, item := range value {
			value[i] = truncateValues(item, maxLength)
		}
		return value
	case string:
		if len(value) <= maxLength {
			return value
		}
		if maxLength <= 6 {
			return value[:maxLength] + "..."
		}
		half := (maxLength - 3) / 2
		return value[:half] + "..." + value[len(value)-half:]
	default:
		return v
	}
}

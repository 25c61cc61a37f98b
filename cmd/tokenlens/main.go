// Copyright 2025 Tokenlens
//
// CLI front-end

package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "tokenlens",
		Short: "Inspect NFT permanence and trust on EVM chains",
		Long: `tokenlens inspects an NFT contract and token, classifies where its
data lives, reconstructs the contract's proxy and access-control shape, and
scores how much trust the token demands.`,
		SilenceUsage: true,
	}

	root.AddCommand(newInspectCmd())
	root.AddCommand(newInspectContractCmd())
	root.AddCommand(newChainsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

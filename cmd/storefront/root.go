package main

import (
	"github.com/spf13/cobra"

	"Storefront/internal/config"
)

const service = "storefront"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "storefront",
		Short:        "Sneaker storefront catalog service",
		SilenceUsage: true,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newServeCmd(), newDatasetCmd())
	return root
}

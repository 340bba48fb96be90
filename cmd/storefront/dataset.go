package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"Storefront/internal/catalog"
)

func newDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Inspect product datasets used to seed the catalog",
	}
	cmd.AddCommand(newDatasetCheckCmd(), newDatasetDumpCmd())
	return cmd
}

func newDatasetCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a dataset and print its catalog views",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return checkDataset(cmd.OutOrStdout(), path)
		},
	}
}

func checkDataset(w io.Writer, path string) error {
	products, err := catalog.LoadDataset(path)
	if err != nil {
		return err
	}
	if err := catalog.CheckDataset(products); err != nil {
		return err
	}

	store := catalog.NewStore()
	store.Seed(products)
	facets := catalog.BuildFacets(store.List())

	fmt.Fprintf(w, "products:     %d\n", store.Len())
	fmt.Fprintf(w, "featured:     %v\n", ids(store.Featured()))
	fmt.Fprintf(w, "new arrivals: %v\n", ids(store.NewArrivals()))
	fmt.Fprintf(w, "categories:   %v\n", facets.Categories)
	fmt.Fprintf(w, "brands:       %v\n", facets.Brands)
	fmt.Fprintf(w, "max price:    %.2f\n", catalog.MaxPrice(store.List()))
	return nil
}

func newDatasetDumpCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the built-in dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return dumpDataset(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	return cmd
}

func dumpDataset(w io.Writer, format string) error {
	products := catalog.SampleProducts()

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(products)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(products)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func ids(products []catalog.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

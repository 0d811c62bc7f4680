// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trivia-cards/internal/taxonomy"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Inspect and validate category taxonomies",
	Long: `A taxonomy is the ordered list of categories printed on every card of a
deck. When one is configured, the nth question of each card is assigned the
nth category.`,
}

var taxonomyValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a taxonomy file (or the configured taxonomy)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTaxonomyValidate,
}

var taxonomyShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print a taxonomy (or the configured taxonomy)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTaxonomyShow,
}

// loadTaxonomyArg loads the file named in args, falling back to the
// configured taxonomy.
func loadTaxonomyArg(args []string) (*taxonomy.Taxonomy, error) {
	if len(args) == 1 {
		return taxonomy.Load(args[0])
	}
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	tax, err := resolveTaxonomy(cfg)
	if err != nil {
		return nil, err
	}
	if tax == nil {
		return nil, errors.New("no taxonomy configured: pass a file or set taxonomy_file in the config")
	}
	return tax, nil
}

func runTaxonomyValidate(cmd *cobra.Command, args []string) error {
	tax, err := loadTaxonomyArg(args)
	if err != nil {
		return err
	}
	name := tax.Name()
	if name == "" {
		name = "inline"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "taxonomy %q is valid: %d categories\n", name, tax.Len())
	return nil
}

func runTaxonomyShow(cmd *cobra.Command, args []string) error {
	tax, err := loadTaxonomyArg(args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	asYAML, _ := cmd.Flags().GetBool("yaml")
	if asYAML {
		data, err := yaml.Marshal(tax.File())
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	if tax.Name() != "" {
		fmt.Fprintln(out, tax.Name())
	}
	for i, c := range tax.Categories() {
		fmt.Fprintf(out, "%3d. %s\n", i+1, c)
	}
	return nil
}

func init() {
	taxonomyShowCmd.Flags().Bool("yaml", false, "output the taxonomy as YAML")

	taxonomyCmd.AddCommand(taxonomyValidateCmd)
	taxonomyCmd.AddCommand(taxonomyShowCmd)

	rootCmd.AddCommand(taxonomyCmd)
}

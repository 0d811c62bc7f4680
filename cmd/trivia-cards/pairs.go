// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trivia-cards/internal/locate"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs <folder>",
	Short: "List the card pairs a folder would produce, without calling a model",
	Long: `Pairs shows how the images in a folder will be grouped into question and
answer faces, and which file (if any) is left unpaired. Use it to check a
capture session before spending inference calls on it.`,
	Args: cobra.ExactArgs(1),
	RunE: runPairs,
}

func init() {
	pairsCmd.Flags().Bool("yaml", false, "output pairs as YAML")
	rootCmd.AddCommand(pairsCmd)
}

func runPairs(cmd *cobra.Command, args []string) error {
	res, err := locate.Pairs(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	asYAML, _ := cmd.Flags().GetBool("yaml")
	if asYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(struct {
			Pairs   any    `yaml:"pairs"`
			Dropped string `yaml:"dropped,omitempty"`
		}{Pairs: res.Pairs, Dropped: res.Dropped}); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	}

	if len(res.Pairs) == 0 {
		fmt.Fprintf(out, "no input: no card images in %s\n", args[0])
		return nil
	}
	for _, p := range res.Pairs {
		fmt.Fprintf(out, "%4d  %-30s  %s\n", p.Index, filepath.Base(p.Question), filepath.Base(p.Answer))
	}
	fmt.Fprintf(out, "\n%d images, %d pairs\n", res.Images, len(res.Pairs))
	if res.Odd() {
		fmt.Fprintf(out, "unpaired (skipped): %s\n", filepath.Base(res.Dropped))
	}
	return nil
}

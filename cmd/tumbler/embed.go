package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ukaji3/tumbler-go/pkg/tumbler"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/output"
)

var (
	embedBase       string
	embedSeed       string
	useCurrentSheet bool
	iframeSeed      string
	iframeRandom    bool
	embedDisplay    tumbler.Display
)

var embedCmd = &cobra.Command{
	Use:   "embed [source]",
	Short: "Print an iframe snippet for embedding",
	Long: `embed builds the URL and iframe markup that embed a tumbler page.
The seed comes from --iframe-random, then --iframe-seed, then --seed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEmbed,
}

func init() {
	embedCmd.Flags().StringVar(&embedBase, "base", "", "Embed base URL (default: server.embed_base)")
	embedCmd.Flags().StringVar(&embedSeed, "seed", "", "Current seed")
	embedCmd.Flags().BoolVar(&useCurrentSheet, "use-current-sheet", false, "Embed the given source instead of the default one")
	embedCmd.Flags().StringVar(&iframeSeed, "iframe-seed", "", "Seed override for the embed")
	embedCmd.Flags().BoolVar(&iframeRandom, "iframe-random", false, "Draw a new seed on every embed load")
	embedCmd.Flags().BoolVar(&embedDisplay.HideControls, "hide-controls", false, "Hide the controls")
	embedCmd.Flags().BoolVar(&embedDisplay.HideSheetConfig, "hide-sheet-config", false, "Hide the source field")
	embedCmd.Flags().BoolVar(&embedDisplay.HideLabels, "hide-labels", false, "Hide column labels")
	embedCmd.Flags().BoolVar(&embedDisplay.HideEmbedConfig, "hide-embed-config", false, "Hide the embed configurator")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	current := tumbler.Locator{}
	if len(args) > 0 {
		current.Sheet = args[0]
	}
	if embedSeed != "" {
		seed, ok := tumbler.ParseSeed(embedSeed)
		if !ok {
			return fmt.Errorf("invalid seed: %s", embedSeed)
		}
		current.Seed = &seed
	}

	opts := tumbler.EmbedOptions{
		UseCurrentSource: useCurrentSheet,
		ForceRandom:      iframeRandom,
		Display:          embedDisplay,
	}
	if iframeSeed != "" {
		seed, ok := tumbler.ParseSeed(iframeSeed)
		if !ok {
			return fmt.Errorf("invalid iframe seed: %s", iframeSeed)
		}
		opts.Seed = &seed
	}

	base := embedBase
	if base == "" {
		base = cfg.Server.EmbedBase
	}
	src := tumbler.EmbedURL(base, current, opts, cfg.TumblerOptions().Source())
	snippet := tumbler.EmbedSnippet(src)

	if !jsonOut {
		return writeOutput(cmd.OutOrStdout(), []byte(snippet))
	}
	data, err := output.EmbedToJSON(&models.Embed{URL: src, Snippet: snippet}, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), data)
}

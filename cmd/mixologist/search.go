package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"mixologist/internal/app"
	"mixologist/internal/pkg/common"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var (
		byIngredient bool
		withImage    bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search cocktails by name or ingredient",
		Long: "Looks up the local collection first, then TheCocktailDB, and only asks the " +
			"generative fallback when nothing else matched. Progress is printed to stderr.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			mode := common.SearchByName
			if byIngredient {
				mode = common.SearchByIngredient
			}
			return withServices(cmd.Context(), func(s *app.Services) error {
				return runSearch(cmd, s, query, mode, withImage, asJSON)
			})
		},
	}

	cmd.Flags().BoolVarP(&byIngredient, "ingredient", "i", false, "Treat the query as an ingredient")
	cmd.Flags().BoolVar(&withImage, "image", false, "Resolve an image when exactly one result has none")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}

func runSearch(cmd *cobra.Command, s *app.Services, query string, mode common.SearchMode, withImage, asJSON bool) error {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	results, err := s.Aggregator.Search(ctx, query, mode, func(status string) {
		fmt.Fprintln(stderr, status)
	})
	if err != nil {
		return fmt.Errorf("searching %q: %w", query, err)
	}

	if withImage && len(results) == 1 && results[0].ImageURL == "" {
		p := results[0]
		if img := s.Images.Resolve(ctx, p.Name, p.Glassware, p.Garnish, p.Color); img != "" {
			results[0] = p.WithImage(img)
		}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No cocktails found.")
		return nil
	}

	fmt.Fprintf(out, "Found %d cocktails:\n\n", len(results))
	for i, p := range results {
		renderProfile(out, i+1, p)
	}
	return nil
}

func writeJSON(w io.Writer, results []common.CocktailProfile) error {
	if results == nil {
		results = []common.CocktailProfile{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// renderProfile 以純文字輸出一筆酒譜
func renderProfile(w io.Writer, n int, p common.CocktailProfile) {
	fmt.Fprintf(w, "%d. %s", n, p.Name)
	if p.IBAClassification != "" {
		fmt.Fprintf(w, " [%s]", p.IBAClassification)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "   %s · %s · %s · ABV %s\n", p.PreparationType, p.Glassware, p.Difficulty, p.ABV)
	for _, line := range strings.Split(strings.TrimSuffix(common.FormatIngredients(p.Ingredients), "\n"), "\n") {
		if line != "" {
			fmt.Fprintf(w, "   %s\n", line)
		}
	}
	if p.Method != "" {
		fmt.Fprintf(w, "   Method: %s\n", p.Method)
	}
	if p.Garnish != "" {
		fmt.Fprintf(w, "   Garnish: %s\n", p.Garnish)
	}
	if p.ImageURL != "" {
		img := p.ImageURL
		if common.IsDataURI(img) {
			img = "(generated image, " + fmt.Sprint(len(img)) + " bytes)"
		}
		fmt.Fprintf(w, "   Image: %s\n", img)
	}
	fmt.Fprintln(w)
}

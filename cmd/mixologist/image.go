package main

import (
	"errors"
	"fmt"

	"mixologist/internal/app"

	"github.com/spf13/cobra"
)

func newImageCmd() *cobra.Command {
	var glassware, garnish, color string

	cmd := &cobra.Command{
		Use:   "image <name>",
		Short: "Find or generate a picture for a cocktail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(s *app.Services) error {
				img := s.Images.Resolve(cmd.Context(), args[0], glassware, garnish, color)
				if img == "" {
					return errors.New("no image available")
				}
				fmt.Fprintln(cmd.OutOrStdout(), img)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&glassware, "glass", "Coupe", "Glassware used in the generated picture")
	cmd.Flags().StringVar(&garnish, "garnish", "", "Garnish used in the generated picture")
	cmd.Flags().StringVar(&color, "color", "", "Liquid color, e.g. #C0392B")

	return cmd
}

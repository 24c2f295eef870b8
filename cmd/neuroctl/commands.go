package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func healthCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API server is up and whether a model is loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := opts.client().CheckHealth(cmd.Context())
			if err != nil {
				return err
			}
			model := mutedStyle.Render("mock predictions")
			if h.ModelLoaded {
				model = successStyle.Render("trained model loaded")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", successStyle.Render("●"), h.Status, model)
			return nil
		},
	}
}

func conditionsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "conditions",
		Short: "List the neurological conditions covered by the screening",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conds, err := opts.client().Conditions(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderConditions(conds))
			return nil
		},
	}
}

func loadModelCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load-model [path]",
		Short: "Ask the server to load a fusion model file",
		Long: `Ask the server to (re)load a late fusion model.

With no path the server reloads its default model file. The path is relative
to the server's model directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			res, err := opts.client().LoadModel(cmd.Context(), path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Success {
				fmt.Fprintln(out, mutedStyle.Render(res.Message))
				return nil
			}
			fmt.Fprintln(out, successStyle.Render(res.Message))
			if res.ModelInfo != nil {
				fmt.Fprintf(out, "  architecture: %s\n  version: %s\n", res.ModelInfo.Architecture, res.ModelInfo.Version)
			}
			return nil
		},
	}
}

func historyCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent prediction runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runs, err := opts.client().History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderHistory(runs))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}

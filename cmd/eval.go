package cmd

import (
	"github.com/lehigh-university-libraries/coverscan/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Cover recognition evaluation tools",
		Long: `Evaluation tools for measuring how accurately covers are turned into metadata.

A dataset manifest lists cover images (or ISBNs) together with the expected
title, author, year and publisher.`,
	}

	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())

	return cmd
}

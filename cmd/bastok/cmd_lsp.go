package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/bastok/lsp"
)

func newLSPCmd() *cobra.Command {
	var flags textFlags

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := flags.translator()
			if err != nil {
				return err
			}
			comment, err := flags.commentChar()
			if err != nil {
				return err
			}
			server := lsp.NewServer(version, cs, comment)
			return server.RunStdio()
		},
	}

	flags.register(cmd, true)

	return cmd
}

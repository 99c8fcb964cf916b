package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newListCmd(fs afero.Fs) *cobra.Command {
	var txttab int

	cmd := &cobra.Command{
		Use:   "list <in.bas>",
		Short: "Dump the tokenized lines of a .BAS program in hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := readProgram(fs, args[0], txttab)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range prog.Lines() {
				fmt.Fprintf(out, "%5d % X\n", line.Number, line.Data)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&txttab, "txttab", 0x8001, "load address the program was saved from")

	return cmd
}

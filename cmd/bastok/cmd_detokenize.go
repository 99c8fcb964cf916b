package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dhamidi/bastok/msx2"
	"github.com/dhamidi/bastok/tlines"
)

func newDetokenizeCmd(fs afero.Fs) *cobra.Command {
	var (
		flags  textFlags
		txttab int
		expand bool
	)

	cmd := &cobra.Command{
		Use:   "detokenize <in.bas>",
		Short: "Print a .BAS program as text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := flags.translator()
			if err != nil {
				return err
			}
			prog, err := readProgram(fs, args[0], txttab)
			if err != nil {
				return err
			}

			lines, err := msx2.NewDetokenizer(cs, expand).Detokenize(prog)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	flags.register(cmd, false)
	cmd.Flags().IntVar(&txttab, "txttab", 0x8001, "load address the program was saved from")
	cmd.Flags().BoolVar(&expand, "expand", false, "add spacing and put each statement on its own line")

	return cmd
}

func readProgram(fs afero.Fs, path string, txttab int) (*tlines.Lines, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open program: %w", err)
	}
	defer f.Close()

	prog, err := tlines.Read(f, txttab)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("%s: %s", path, prog)
	return prog, nil
}

package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dhamidi/bastok/blines"
	"github.com/dhamidi/bastok/msx2"
)

func newTokenizeCmd(fs afero.Fs) *cobra.Command {
	var (
		flags  textFlags
		txttab int
	)

	cmd := &cobra.Command{
		Use:   "tokenize <in.txt> <out.bas>",
		Short: "Tokenize BASIC source into a .BAS program",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := flags.translator()
			if err != nil {
				return err
			}
			comment, err := flags.commentChar()
			if err != nil {
				return err
			}

			data, err := afero.ReadFile(fs, args[0])
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			lines := blines.JoinLines(sourceLines(data), comment)

			prog, err := msx2.NewTokenizer(cs).TokenizeLines(lines, txttab)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			f, err := fs.Create(args[1])
			if err != nil {
				return fmt.Errorf("create program: %w", err)
			}
			defer f.Close()

			n, err := prog.WriteTo(f)
			if err != nil {
				return fmt.Errorf("write program: %w", err)
			}
			log.Infof("%s: %d lines, %d bytes", args[1], prog.Len(), n)
			return f.Close()
		},
	}

	flags.register(cmd, true)
	cmd.Flags().IntVar(&txttab, "txttab", 0x8001, "load address of the program text")

	return cmd
}

// sourceLines splits a text file into lines without their line endings.
func sourceLines(data []byte) []string {
	raw := bytes.SplitAfter(data, []byte("\n"))
	if len(raw[len(raw)-1]) == 0 {
		raw = raw[:len(raw)-1]
	}
	stripped := blines.StripEOL(raw)
	lines := make([]string, len(stripped))
	for i, l := range stripped {
		lines[i] = string(l)
	}
	return lines
}

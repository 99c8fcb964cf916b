package main

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dhamidi/bastok/ebnflex"
	"github.com/dhamidi/bastok/parse"
)

func newEbnfCmd(fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ebnf",
		Short:         "EBNF grammar tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newEbnfCheckCmd(fs))
	cmd.AddCommand(newEbnfMatchCmd(fs))

	return cmd
}

func newEbnfCheckCmd(fs afero.Fs) *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:           "check <file>",
		Short:         "Parse and verify an EBNF grammar file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			grammar, err := ebnflex.LoadGrammar(fs, args[0])
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return err
			}
			if startProduction == "" {
				return nil
			}
			if err := ebnflex.Check(grammar, startProduction); err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (if empty, only checks syntax)")

	return cmd
}

func newEbnfMatchCmd(fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <file> <production> <text>",
		Short: "Print the longest prefix of text matching a production",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			grammar, err := ebnflex.LoadGrammar(fs, args[0])
			if err != nil {
				return err
			}
			s := parse.FromString[rune](args[2])
			matched, ok, err := ebnflex.Match(ebnflex.NewMatcher(grammar), s, args[1])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s does not match %q", args[1], args[2])
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(matched))
			return nil
		},
	}

	return cmd
}

// printErrors prints each error of an error list on its own line.
func printErrors(w io.Writer, err error) {
	if inner := errors.Unwrap(err); inner != nil {
		err = inner
	}
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintln(w, v.Index(i).Interface())
		}
	} else {
		fmt.Fprintln(w, err)
	}
}

package main

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/bastok/blines"
	"github.com/dhamidi/bastok/charset"
	"github.com/dhamidi/bastok/parse"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

var log = commonlog.GetLogger("bastok")

func main() {
	if err := newRootCmd(afero.NewOsFs()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	var verbose int

	rootCmd := &cobra.Command{
		Use:     "bastok",
		Short:   "Tokenize and detokenize MSX-BASIC programs",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbose, nil)
		},
	}
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (repeatable)")

	rootCmd.AddCommand(newTokenizeCmd(fs))
	rootCmd.AddCommand(newDetokenizeCmd(fs))
	rootCmd.AddCommand(newListCmd(fs))
	rootCmd.AddCommand(newEbnfCmd(fs))
	rootCmd.AddCommand(newLSPCmd())

	return rootCmd
}

// textFlags are the flags shared by the commands that read or write BASIC
// text.
type textFlags struct {
	charset string
	comment string
}

func (f *textFlags) register(cmd *cobra.Command, comments bool) {
	cmd.Flags().StringVar(&f.charset, "charset", charset.DefaultName, "character set of strings and comments")
	if comments {
		cmd.Flags().StringVar(&f.comment, "comment-char", string(blines.DefaultCommentChar), "character that starts a source comment")
	}
}

func (f *textFlags) translator() (parse.Translator[byte], error) {
	return charset.Lookup(f.charset)
}

func (f *textFlags) commentChar() (rune, error) {
	r, size := utf8.DecodeRuneInString(f.comment)
	if r == utf8.RuneError || size != len(f.comment) {
		return 0, fmt.Errorf("comment character %q must be a single character", f.comment)
	}
	return r, nil
}

package main

import (
	"io"

	"github.com/pagekit-dev/pagekit/pkg/markup"
	"github.com/spf13/cobra"
)

func nl2brCmd() *cobra.Command {
	return convertCmd("nl2br", "Replace newlines with <br /> tags",
		`Reads text from stdin and writes it to stdout with every newline
replaced by <br />.

Example:
  printf 'a\nb' | pagekit nl2br`, markup.NL2BR)
}

func br2nlCmd() *cobra.Command {
	return convertCmd("br2nl", "Replace <br> tags with newlines",
		`Reads markup from stdin and writes it to stdout with every <br />,
<br> and <br/> replaced by a newline.

Example:
  echo 'a<br>b' | pagekit br2nl`, markup.BR2NL)
}

func convertCmd(use, short, long string, fn func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), fn(string(in)))
			return err
		},
	}
}

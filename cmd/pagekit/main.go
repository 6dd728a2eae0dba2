package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	pkerrors "github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		exitError(os.Stderr, err, isTerminal(os.Stderr))
		os.Exit(1)
	}
}

// exitError prints a failed command's error, with colours only on a terminal.
func exitError(w io.Writer, err error, color bool) {
	if color {
		pkerrors.EnableColors()
	} else {
		pkerrors.DisableColors()
	}
	pkerrors.PrintError(w, err)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pagekit",
		Short: "Growl banners, break-tag conversion and scroll-to-top for web pages",
		Long: `pagekit drives small pieces of page behaviour from Go.

Pages connect to the server over a WebSocket. The server can then:

  • Show growl banners on every connected page
  • Reveal a scroll-to-top control once a page is scrolled far enough
  • Convert between newlines and <br /> tags`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(),
		nl2brCmd(),
		br2nlCmd(),
		versionCmd(),
	)
	return root
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

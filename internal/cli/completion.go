package cli

import (
	"io"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/sysbuild/pkg/errors"
)

// completionCommand prints shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for the given shell to stdout.

The script completes sysbuild commands, flags and, where possible,
arguments. Source it in the current shell or install it once:

  bash        source <(sysbuild completion bash)
  zsh         sysbuild completion zsh > "${fpath[1]}/_sysbuild"
  fish        sysbuild completion fish > ~/.config/fish/completions/sysbuild.fish
  powershell  sysbuild completion powershell | Out-String | Invoke-Expression

zsh needs compinit enabled. Open a new shell after installing.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeCompletion(cmd.Root(), args[0], stdout)
		},
	}
}

func writeCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return errs.NewFor(errs.ErrCodeUnsupported, shell, "no completion for shell %q", shell)
}

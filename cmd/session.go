package cmd

import (
	"os"

	"github.com/shouni/go-story-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// sessionCmd は標準入力で質問を続ける対話モードなのだ。
var sessionCmd = &cobra.Command{
	Use:     "session",
	Short:   "対話しながらお話を続けるのだ。",
	Example: "  story-kit session --child-name Mio -o memory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return pipeline.ExecuteSession(cmd.Context(), loadConfig(cmd), os.Stdin, os.Stdout)
	},
}

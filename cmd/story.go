package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-story-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// storyCmd は 1 つの質問からお話を作り、続けてフォローアップの質問も順に送るのだ。
var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "質問（と画像）から 1 つのお話と音声と挿絵を作るのだ。",
	Long: `質問と任意の画像を Gemini に送り、お話の JSON を受け取ったあと、
読み上げ音声（WAV）と挿絵を並行して生成するのだ。
--follow-up を繰り返すと、同じ画像と名前のまま話を続けるのだよ。`,
	Example: `  story-kit story -q "Why is the sky blue?" --child-name Mio
  story-kit story -i photo.jpg -q "What is this?" --follow-up "Where does it live?" -o output/media`,
	RunE: storyCommand,
}

func init() {
	storyCmd.Flags().StringVarP(&opts.Question, "question", "q", "", "子どもからの質問なのだ。")
	storyCmd.Flags().StringArrayVar(&opts.FollowUps, "follow-up", nil, "続けて送る質問なのだ（複数指定できるのだ）。")
}

func storyCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.Question == "" {
		return fmt.Errorf("質問（--question）を指定してほしいのだ")
	}

	cfg := loadConfig(cmd)

	slog.Info("お話づくりを開始するのだ！",
		"story_model", cfg.StoryModel,
		"tts_model", cfg.TTSModel,
		"image_model", cfg.ImageModel,
		"media_output", cfg.MediaOutput,
		"follow_ups", len(cfg.Options.FollowUps))

	if err := pipeline.Execute(ctx, cfg); err != nil {
		return err
	}

	slog.Info("お話ができあがったのだ！")
	return nil
}

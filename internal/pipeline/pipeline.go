package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shouni/go-story-kit/internal/builder"
	"github.com/shouni/go-story-kit/internal/config"
	"github.com/shouni/go-story-kit/internal/runner"
	"github.com/shouni/go-story-kit/pkg/domain"
	"github.com/shouni/go-story-kit/pkg/publisher"
)

// Execute は 1 回分のストーリー生成（とフォローアップ）を実行し、結果を標準出力に書き出すのだ。
func Execute(ctx context.Context, cfg *config.Config) error {
	appCtx, err := builder.BuildAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	renderer := runner.NewRenderer(os.Stdout, appCtx.Options.JSON)
	storyRunner := runner.NewStoryRunner(appCtx.Orchestrator, renderer)
	if err := storyRunner.Run(ctx, appCtx.Options); err != nil {
		return fmt.Errorf("ストーリー生成に失敗しました: %w", err)
	}
	return nil
}

// ExecuteSession は対話セッションを開始し、入力が尽きるか /quit まで続けるのだ。
func ExecuteSession(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	appCtx, err := builder.BuildAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	image, err := runner.LoadImage(appCtx.Options.ImageFile)
	if err != nil {
		return err
	}

	p := domain.Personalization{
		ChildName:     appCtx.Options.ChildName,
		CharacterName: appCtx.Options.CharacterName,
	}
	sessionRunner := runner.NewSessionRunner(appCtx.Orchestrator, runner.NewRenderer(out, appCtx.Options.JSON), in, out, p, image)

	slog.InfoContext(ctx, "対話セッションを開始します", "session", appCtx.Orchestrator.Snapshot().SessionID)
	return sessionRunner.Run(ctx)
}

// ExecuteWAV は PCM ファイルを WAV に変換して保存するのだ。Gemini には接続しないのだ。
func ExecuteWAV(ctx context.Context, cfg *config.Config, opts config.WAVOptions) (string, error) {
	src := io.Reader(os.Stdin)
	if opts.Input != "" && opts.Input != "-" {
		f, err := os.Open(opts.Input)
		if err != nil {
			return "", fmt.Errorf("入力ファイル '%s' を開けませんでした: %w", opts.Input, err)
		}
		defer f.Close()
		src = f
	}

	dir, name := publisher.SplitOutputPath(opts.Output)
	var writer publisher.OutputWriter = publisher.NewLocalWriter(dir)
	if publisher.IsS3URI(dir) {
		w, err := builder.InitializeS3Writer(ctx, cfg, dir)
		if err != nil {
			return "", err
		}
		writer = w
	}

	return runner.NewWAVRunner(writer).Run(ctx, src, name, opts.SampleRate, opts.Base64)
}

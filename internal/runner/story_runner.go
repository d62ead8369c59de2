package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/go-story-kit/internal/config"
	"github.com/shouni/go-story-kit/pkg/domain"
	"github.com/shouni/go-story-kit/pkg/workflow"
)

// StoryRunner は 1 回のトップレベル送信と、続けて指定されたフォローアップを順に実行するのだ。
type StoryRunner struct {
	session  StorySession
	renderer *Renderer
}

func NewStoryRunner(session StorySession, renderer *Renderer) *StoryRunner {
	return &StoryRunner{session: session, renderer: renderer}
}

// Run は opts の質問と画像で送信し、FollowUps を同じセッションで続けて送るのだ。
// どこかのターンがテキスト生成に失敗した時点で止まり、そのエラーを返します。
func (r *StoryRunner) Run(ctx context.Context, opts config.StoryOptions) error {
	image, err := LoadImage(opts.ImageFile)
	if err != nil {
		return err
	}

	view, err := r.session.Submit(ctx, workflow.Input{
		Image:    image,
		Question: opts.Question,
		Personalization: domain.Personalization{
			ChildName:     opts.ChildName,
			CharacterName: opts.CharacterName,
		},
	})
	if err := r.finish(view, err); err != nil {
		return err
	}

	for i, q := range opts.FollowUps {
		slog.InfoContext(ctx, "フォローアップを送信します", "index", i+1, "question", q)
		view, err := r.session.SubmitFollowUp(ctx, q)
		if err := r.finish(view, err); err != nil {
			return err
		}
	}
	return nil
}

// finish は結果を描画し、ターンの失敗を呼び出し元向けのエラーに変えるのだ。
func (r *StoryRunner) finish(view workflow.View, err error) error {
	var reqErr *domain.RequestError
	if err != nil && !errors.As(err, &reqErr) {
		return err
	}
	if rerr := r.renderer.Render(view); rerr != nil {
		return fmt.Errorf("結果の出力に失敗しました: %w", rerr)
	}
	return err
}

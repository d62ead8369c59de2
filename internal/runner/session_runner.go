package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shouni/go-story-kit/pkg/domain"
	"github.com/shouni/go-story-kit/pkg/workflow"
)

const sessionHelp = `commands:
  <question>      ask a question (follows up on the current story if there is one)
  <number>        ask one of the suggested questions
  /new <question> start a new story with the current image
  /image <path>   set the image for the next /new (empty path clears it)
  /reset          forget everything and start over
  /quit           exit`

// SessionRunner は標準入力から 1 行ずつ読み、対話的にストーリーを続ける REPL なのだ。
type SessionRunner struct {
	session         StorySession
	renderer        *Renderer
	in              io.Reader
	out             io.Writer
	personalization domain.Personalization
	image           *domain.ImageInput
}

func NewSessionRunner(session StorySession, renderer *Renderer, in io.Reader, out io.Writer, p domain.Personalization, image *domain.ImageInput) *SessionRunner {
	return &SessionRunner{
		session:         session,
		renderer:        renderer,
		in:              in,
		out:             out,
		personalization: p,
		image:           image,
	}
}

// Run は EOF か /quit まで対話を続けるのだ。
// ターンの失敗は表示だけして、セッションは続けるのだ。
func (r *SessionRunner) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, mutedStyle.Render(sessionHelp))

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, questionStyle.Render("> "))
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		quit, err := r.handle(ctx, line)
		if err != nil {
			fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

func (r *SessionRunner) handle(ctx context.Context, line string) (quit bool, err error) {
	switch {
	case line == "/quit" || line == "/exit":
		return true, nil
	case line == "/help":
		fmt.Fprintln(r.out, mutedStyle.Render(sessionHelp))
		return false, nil
	case line == "/reset":
		r.session.Reset()
		fmt.Fprintln(r.out, mutedStyle.Render("session reset"))
		return false, nil
	case strings.HasPrefix(line, "/image"):
		image, err := LoadImage(strings.TrimSpace(strings.TrimPrefix(line, "/image")))
		if err != nil {
			return false, err
		}
		r.image = image
		fmt.Fprintln(r.out, mutedStyle.Render(fmt.Sprintf("image set: %v", image != nil)))
		return false, nil
	case strings.HasPrefix(line, "/new"):
		return false, r.submit(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/new")))
	}

	question := r.resolveSuggestion(line)
	view, err := r.session.SubmitFollowUp(ctx, question)
	if errors.Is(err, domain.ErrNoRetainedTurn) {
		return false, r.submit(ctx, question)
	}
	return false, r.show(view, err)
}

func (r *SessionRunner) submit(ctx context.Context, question string) error {
	view, err := r.session.Submit(ctx, workflow.Input{
		Image:           r.image,
		Question:        question,
		Personalization: r.personalization,
	})
	return r.show(view, err)
}

// show は描画できる結果なら描画し、そうでなければエラーをそのまま返すのだ。
func (r *SessionRunner) show(view workflow.View, err error) error {
	var reqErr *domain.RequestError
	if err != nil && !errors.As(err, &reqErr) {
		return err
	}
	if err != nil {
		slog.Debug("ターンが失敗しました", "error", err)
	}
	return r.renderer.Render(view)
}

// resolveSuggestion は番号入力を直前のストーリーの候補質問に置き換えるのだ。
func (r *SessionRunner) resolveSuggestion(line string) string {
	n, err := strconv.Atoi(line)
	if err != nil {
		return line
	}
	view := r.session.Snapshot()
	if view.Story == nil {
		return line
	}
	suggestions := view.Story.Storyboard.SuggestedQuestions
	if n < 1 || n > len(suggestions) {
		return line
	}
	return suggestions[n-1]
}

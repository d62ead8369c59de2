package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shouni/go-story-kit/pkg/domain"
	"github.com/shouni/go-story-kit/pkg/session"
)

// Orchestrator はテキスト生成、メディアの並行生成、表示までの状態遷移を管理します。
//
// 状態は Idle → Analyzing → GeneratingMedia → Playing と進み、本文生成に失敗した場合だけ Error になります。
// 1 セッションで同時に進行できるターンは 1 つだけで、進行中の送信は ErrTurnInProgress で拒否します。
// 非同期の完了はすべて単調増加のターン番号で照合し、Reset や新しい送信の後に届いた古い結果は捨てます。
type Orchestrator struct {
	stories StoryGenerator
	media   MediaRunner
	session *session.Session

	mu     sync.Mutex
	state  domain.State
	turn   uint64
	story  *domain.StoryResult
	bundle domain.MediaBundle
	errMsg string
}

// NewOrchestrator は Idle 状態の Orchestrator を作るのだ。
func NewOrchestrator(stories StoryGenerator, media MediaRunner, sess *session.Session) (*Orchestrator, error) {
	if stories == nil {
		return nil, fmt.Errorf("StoryGenerator は必須です")
	}
	if media == nil {
		return nil, fmt.Errorf("MediaRunner は必須です")
	}
	if sess == nil {
		sess = session.New(session.DefaultContextCapacity)
	}
	return &Orchestrator{
		stories: stories,
		media:   media,
		session: sess,
		state:   domain.StateIdle,
	}, nil
}

// Submit は新しい質問でターンを開始し、Playing か Error に到達するまでブロックするのだ。
// 入力は SessionTurnState として保存され、次の SubmitFollowUp で再利用されるのだ。
func (o *Orchestrator) Submit(ctx context.Context, in Input) (View, error) {
	return o.run(ctx, in, true)
}

// SubmitFollowUp は直前のトップレベル送信の画像とパーソナライズを再利用して、新しい質問を送るのだ。
func (o *Orchestrator) SubmitFollowUp(ctx context.Context, question string) (View, error) {
	return o.run(ctx, Input{Question: question}, false)
}

// Reset はどの状態からでも Idle に戻し、ストーリー、メディア、エラー、保存済みの入力、話題履歴をすべて破棄するのだ。
// 進行中のターンは取り消さないけれど、その結果は状態に反映されなくなるのだ。
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.turn++
	o.transition(domain.StateIdle)
	o.story = nil
	o.bundle = domain.MediaBundle{}
	o.errMsg = ""
	o.session.Clear()

	slog.Info("セッションをリセットしました", "session", o.session.ID, "turn", o.turn)
}

// Snapshot は現在の状態のコピーを返すのだ。
func (o *Orchestrator) Snapshot() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

func (o *Orchestrator) run(ctx context.Context, in Input, retain bool) (View, error) {
	if strings.TrimSpace(in.Question) == "" {
		return o.Snapshot(), domain.ErrEmptyQuestion
	}

	// 1. ターンの開始
	o.mu.Lock()
	if o.state.IsBusy() {
		view := o.viewLocked()
		o.mu.Unlock()
		return view, domain.ErrTurnInProgress
	}
	if !retain {
		// 保存済みの入力は o.mu を持ったまま読むのだ
		retained, ok := o.session.Retained()
		if !ok {
			view := o.viewLocked()
			o.mu.Unlock()
			return view, domain.ErrNoRetainedTurn
		}
		in.Image = retained.Image
		in.Personalization = retained.Personalization
	}
	req, err := domain.NewGenerationRequest(in.Image, in.Question, in.Personalization, o.session.Context.Snapshot())
	if err != nil {
		view := o.viewLocked()
		o.mu.Unlock()
		return view, err
	}
	o.turn++
	turn := o.turn
	o.story = nil
	o.bundle = domain.MediaBundle{}
	o.errMsg = ""
	o.transition(domain.StateAnalyzing)
	if retain {
		o.session.Retain(session.TurnState{
			Image:           req.Image,
			Question:        req.Question,
			Personalization: req.Personalization,
		})
	}
	o.mu.Unlock()

	logger := slog.With("session", o.session.ID, "turn", turn)
	logger.InfoContext(ctx, "ストーリー生成を開始します",
		"follow_up", !retain,
		"has_image", req.HasImage(),
		"prev_topics", len(req.ContextWindow),
	)

	// 2. 本文の生成
	story, err := o.stories.GenerateStory(ctx, req)

	o.mu.Lock()
	if o.turn != turn {
		view := o.viewLocked()
		o.mu.Unlock()
		logger.DebugContext(ctx, "破棄済みのターンのストーリー結果を無視します")
		return view, domain.ErrTurnSuperseded
	}
	if err == nil {
		err = story.Validate()
	}
	if err != nil {
		var reqErr *domain.RequestError
		if !errors.As(err, &reqErr) {
			err = &domain.RequestError{Err: err}
		}
		o.story = nil
		o.errMsg = domain.UserFacingMessage
		o.transition(domain.StateError)
		view := o.viewLocked()
		o.mu.Unlock()
		logger.ErrorContext(ctx, "ストーリー生成に失敗しました", "error", err)
		return view, err
	}
	o.story = story.Clone()
	o.session.Context.Append(story.Meta.EducationalConcept)
	o.transition(domain.StateGeneratingMedia)
	o.mu.Unlock()

	// 3. 音声と挿絵の並行生成
	res := o.media.Run(ctx, story.Storyboard.AudioText, story.Visuals.ImagePrompt)
	for _, outcome := range res.Outcomes {
		if outcome.Err != nil {
			logger.WarnContext(ctx, "メディア生成に失敗しました", "kind", outcome.Kind, "error", outcome.Err)
		}
	}
	if res.Bundle.IsEmpty() {
		logger.WarnContext(ctx, "音声と挿絵の両方が得られませんでした。テキストのみで表示します")
	}

	// 4. 表示
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.turn != turn {
		logger.DebugContext(ctx, "破棄済みのターンのメディア結果を無視します")
		return o.viewLocked(), domain.ErrTurnSuperseded
	}
	o.bundle = res.Bundle
	o.transition(domain.StatePlaying)

	logger.InfoContext(ctx, "ストーリーの準備ができました",
		"title", story.Storyboard.Title,
		"audio", res.Bundle.HasAudio(),
		"image", res.Bundle.HasImage(),
	)
	return o.viewLocked(), nil
}

// transition は o.mu を保持した状態で呼ぶのだ。
func (o *Orchestrator) transition(to domain.State) {
	from := o.state
	o.state = to
	slog.Debug("状態遷移", "session", o.session.ID, "turn", o.turn, "from", from, "to", to)
}

func (o *Orchestrator) viewLocked() View {
	return View{
		SessionID:    o.session.ID,
		State:        o.state,
		Turn:         o.turn,
		Story:        o.story.Clone(),
		Media:        o.bundle,
		ErrorMessage: o.errMsg,
		Topics:       o.session.Context.Snapshot(),
	}
}

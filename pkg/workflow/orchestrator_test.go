package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/shouni/go-story-kit/pkg/domain"
	"github.com/shouni/go-story-kit/pkg/pipeline"
	"github.com/shouni/go-story-kit/pkg/session"
)

// fakeStories は受け取ったリクエストを記録し、gate が閉じるまで応答を止められる StoryGenerator なのだ。
type fakeStories struct {
	mu       sync.Mutex
	requests []*domain.GenerationRequest
	err      error
	gate     chan struct{}
	started  chan struct{}
}

func (f *fakeStories) GenerateStory(_ context.Context, req *domain.GenerationRequest) (*domain.StoryResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	gate, started, err := f.gate, f.started, f.err
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return storyFor(fmt.Sprintf("topic-%d", n)), nil
}

func (f *fakeStories) last() *domain.GenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func storyFor(topic string) *domain.StoryResult {
	return &domain.StoryResult{
		Meta:       domain.Meta{EducationalConcept: topic},
		Storyboard: domain.Storyboard{Title: "t", DisplayText: "d", AudioText: "say " + topic},
		Visuals:    domain.Visuals{ImagePrompt: "draw " + topic},
	}
}

// fakeMedia は音声と挿絵の成否を切り替えられる MediaRunner なのだ。
type fakeMedia struct {
	audioErr error
	imageErr error
	gate     chan struct{}
	started  chan struct{}
	calls    int
}

func (f *fakeMedia) Run(_ context.Context, audioText, imagePrompt string) pipeline.Result {
	f.calls++
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	res := pipeline.Result{Outcomes: []pipeline.Outcome{
		{Kind: domain.MediaAudio, Handle: "mem://audio", Err: f.audioErr},
		{Kind: domain.MediaImage, Handle: "mem://image", Err: f.imageErr},
	}}
	if f.audioErr == nil {
		res.Bundle.AudioURL = "mem://audio"
	}
	if f.imageErr == nil {
		res.Bundle.ImageURL = "mem://image"
	}
	return res
}

func newTestOrchestrator(t *testing.T, stories StoryGenerator, media MediaRunner) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(stories, media, session.New(session.DefaultContextCapacity))
	if err != nil {
		t.Fatalf("初期化に失敗したのだ: %v", err)
	}
	return o
}

func TestOrchestrator_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("成功するとPlayingになり話題が追加されるのだ", func(t *testing.T) {
		o := newTestOrchestrator(t, &fakeStories{}, &fakeMedia{})
		if o.Snapshot().State != domain.StateIdle {
			t.Fatal("初期状態が Idle ではないのだ")
		}

		view, err := o.Submit(ctx, Input{Question: "why is snow white?"})
		if err != nil {
			t.Fatalf("送信に失敗したのだ: %v", err)
		}
		if view.State != domain.StatePlaying {
			t.Errorf("状態 期待値 playing, 実際の値 %s", view.State)
		}
		if view.Story == nil || view.Story.Meta.EducationalConcept != "topic-1" {
			t.Errorf("ストーリーが保存されていないのだ: %+v", view.Story)
		}
		if !reflect.DeepEqual(view.Topics, []string{"topic-1"}) {
			t.Errorf("話題履歴が違うのだ: %v", view.Topics)
		}
		if !view.Media.HasAudio() || !view.Media.HasImage() {
			t.Errorf("メディアがそろっていないのだ: %+v", view.Media)
		}
	})

	t.Run("直近3件の話題が次のリクエストに載るのだ", func(t *testing.T) {
		stories := &fakeStories{}
		o := newTestOrchestrator(t, stories, &fakeMedia{})
		for i := 0; i < 5; i++ {
			if _, err := o.Submit(ctx, Input{Question: "q"}); err != nil {
				t.Fatalf("送信に失敗したのだ: %v", err)
			}
		}
		if got := stories.last().ContextWindow; !reflect.DeepEqual(got, []string{"topic-2", "topic-3", "topic-4"}) {
			t.Errorf("5回目のリクエストの話題が違うのだ: %v", got)
		}
		if got := o.Snapshot().Topics; !reflect.DeepEqual(got, []string{"topic-3", "topic-4", "topic-5"}) {
			t.Errorf("話題履歴が違うのだ: %v", got)
		}
	})

	t.Run("音声だけ失敗してもPlayingになるのだ", func(t *testing.T) {
		o := newTestOrchestrator(t, &fakeStories{}, &fakeMedia{audioErr: errors.New("tts")})

		view, err := o.Submit(ctx, Input{Question: "q"})
		if err != nil {
			t.Fatalf("メディア失敗でエラーが返ったのだ: %v", err)
		}
		if view.State != domain.StatePlaying {
			t.Errorf("状態 期待値 playing, 実際の値 %s", view.State)
		}
		if view.Media.HasAudio() || !view.Media.HasImage() {
			t.Errorf("バンドルが想定と違うのだ: %+v", view.Media)
		}
		if view.ErrorMessage != "" {
			t.Errorf("メディア失敗がユーザーに見えているのだ: %s", view.ErrorMessage)
		}
	})

	t.Run("両方失敗しても空のバンドルでPlayingになるのだ", func(t *testing.T) {
		o := newTestOrchestrator(t, &fakeStories{}, &fakeMedia{audioErr: errors.New("a"), imageErr: errors.New("b")})

		view, err := o.Submit(ctx, Input{Question: "q"})
		if err != nil || view.State != domain.StatePlaying || !view.Media.IsEmpty() {
			t.Errorf("想定と違うのだ: state=%s media=%+v err=%v", view.State, view.Media, err)
		}
	})

	t.Run("本文生成が失敗するとErrorになり話題は変わらないのだ", func(t *testing.T) {
		stories := &fakeStories{}
		media := &fakeMedia{}
		o := newTestOrchestrator(t, stories, media)
		if _, err := o.Submit(ctx, Input{Question: "first"}); err != nil {
			t.Fatalf("1回目の送信に失敗したのだ: %v", err)
		}
		before := o.Snapshot().Topics

		stories.mu.Lock()
		stories.err = &domain.RequestError{Err: errors.New("network")}
		stories.mu.Unlock()

		view, err := o.Submit(ctx, Input{Question: "second"})
		var reqErr *domain.RequestError
		if !errors.As(err, &reqErr) {
			t.Fatalf("RequestError を期待したのだ: %v", err)
		}
		if view.State != domain.StateError {
			t.Errorf("状態 期待値 error, 実際の値 %s", view.State)
		}
		if view.Story != nil {
			t.Error("失敗したのにストーリーが残っているのだ")
		}
		if view.ErrorMessage != domain.UserFacingMessage {
			t.Errorf("ユーザー向けメッセージが違うのだ: %q", view.ErrorMessage)
		}
		if !reflect.DeepEqual(view.Topics, before) {
			t.Errorf("話題履歴が変わったのだ: %v -> %v", before, view.Topics)
		}
		if media.calls != 1 {
			t.Errorf("失敗したターンでメディア生成が呼ばれたのだ: %d", media.calls)
		}
	})

	t.Run("形の崩れた結果はRequestErrorになるのだ", func(t *testing.T) {
		o := newTestOrchestrator(t, storyFunc(func() (*domain.StoryResult, error) {
			return &domain.StoryResult{}, nil
		}), &fakeMedia{})

		view, err := o.Submit(ctx, Input{Question: "q"})
		var reqErr *domain.RequestError
		if !errors.As(err, &reqErr) || view.State != domain.StateError {
			t.Errorf("RequestError と Error 状態を期待したのだ: %s %v", view.State, err)
		}
	})

	t.Run("空の質問は状態を変えずに拒否するのだ", func(t *testing.T) {
		o := newTestOrchestrator(t, &fakeStories{}, &fakeMedia{})
		view, err := o.Submit(ctx, Input{Question: "  "})
		if !errors.Is(err, domain.ErrEmptyQuestion) || view.State != domain.StateIdle {
			t.Errorf("想定と違うのだ: state=%s err=%v", view.State, err)
		}
	})

	t.Run("進行中の送信は拒否されるのだ", func(t *testing.T) {
		stories := &fakeStories{gate: make(chan struct{}), started: make(chan struct{}, 1)}
		o := newTestOrchestrator(t, stories, &fakeMedia{})

		done := make(chan error, 1)
		go func() {
			_, err := o.Submit(ctx, Input{Question: "first"})
			done <- err
		}()
		<-stories.started

		if _, err := o.Submit(ctx, Input{Question: "second"}); !errors.Is(err, domain.ErrTurnInProgress) {
			t.Errorf("ErrTurnInProgress を期待したのだ: %v", err)
		}
		close(stories.gate)
		if err := <-done; err != nil {
			t.Errorf("最初の送信が失敗したのだ: %v", err)
		}
	})
}

func TestOrchestrator_SubmitFollowUp(t *testing.T) {
	ctx := context.Background()

	t.Run("直前の画像とパーソナライズを再利用するのだ", func(t *testing.T) {
		stories := &fakeStories{}
		o := newTestOrchestrator(t, stories, &fakeMedia{})
		img := &domain.ImageInput{Data: []byte{1, 2, 3}, MIMEType: "image/png"}
		p := domain.Personalization{ChildName: "Hana", CharacterName: "Zunda"}

		if _, err := o.Submit(ctx, Input{Image: img, Question: "what is this?", Personalization: p}); err != nil {
			t.Fatalf("送信に失敗したのだ: %v", err)
		}
		view, err := o.SubmitFollowUp(ctx, "why is it green?")
		if err != nil {
			t.Fatalf("フォローアップに失敗したのだ: %v", err)
		}

		req := stories.last()
		if req.Question != "why is it green?" {
			t.Errorf("質問が違うのだ: %s", req.Question)
		}
		if req.Image == nil || !bytes.Equal(req.Image.Data, img.Data) || req.Image.MIMEType != "image/png" {
			t.Errorf("画像が再利用されていないのだ: %+v", req.Image)
		}
		if req.Personalization != p {
			t.Errorf("パーソナライズが違うのだ: %+v", req.Personalization)
		}
		if !reflect.DeepEqual(req.ContextWindow, []string{"topic-1"}) {
			t.Errorf("話題履歴が載っていないのだ: %v", req.ContextWindow)
		}
		if view.State != domain.StatePlaying {
			t.Errorf("状態 期待値 playing, 実際の値 %s", view.State)
		}
	})

	t.Run("フォローアップは保存済みの入力を置き換えないのだ", func(t *testing.T) {
		stories := &fakeStories{}
		o := newTestOrchestrator(t, stories, &fakeMedia{})
		img := &domain.ImageInput{Data: []byte{7}, MIMEType: "image/jpeg"}

		o.Submit(ctx, Input{Image: img, Question: "q1"})
		o.SubmitFollowUp(ctx, "q2")
		o.SubmitFollowUp(ctx, "q3")

		if req := stories.last(); req.Image == nil || req.Image.Data[0] != 7 {
			t.Errorf("2回目のフォローアップで画像が失われたのだ: %+v", req.Image)
		}
	})

	t.Run("リセット後のフォローアップは破棄した入力を使わないのだ", func(t *testing.T) {
		stories := &fakeStories{}
		o := newTestOrchestrator(t, stories, &fakeMedia{})
		img := &domain.ImageInput{Data: []byte{9}, MIMEType: "image/png"}

		if _, err := o.Submit(ctx, Input{Image: img, Question: "q1", Personalization: domain.Personalization{ChildName: "Hana"}}); err != nil {
			t.Fatalf("送信に失敗したのだ: %v", err)
		}
		o.Reset()

		view, err := o.SubmitFollowUp(ctx, "q2")
		if !errors.Is(err, domain.ErrNoRetainedTurn) {
			t.Fatalf("ErrNoRetainedTurn を期待したのだ: %v", err)
		}
		if view.State != domain.StateIdle {
			t.Errorf("状態 期待値 idle, 実際の値 %s", view.State)
		}
		stories.mu.Lock()
		calls := len(stories.requests)
		stories.mu.Unlock()
		if calls != 1 {
			t.Errorf("リセット後に本文生成が呼ばれたのだ: %d 回", calls)
		}
	})

	t.Run("リセットと並行したフォローアップは保存済みの入力かエラーのどちらかなのだ", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			stories := &fakeStories{}
			o := newTestOrchestrator(t, stories, &fakeMedia{})
			img := &domain.ImageInput{Data: []byte{5}, MIMEType: "image/png"}
			if _, err := o.Submit(ctx, Input{Image: img, Question: "q1"}); err != nil {
				t.Fatalf("送信に失敗したのだ: %v", err)
			}

			var wg sync.WaitGroup
			var followErr error
			wg.Add(2)
			go func() {
				defer wg.Done()
				o.Reset()
			}()
			go func() {
				defer wg.Done()
				_, followErr = o.SubmitFollowUp(ctx, "q2")
			}()
			wg.Wait()

			if followErr != nil {
				if !errors.Is(followErr, domain.ErrNoRetainedTurn) && !errors.Is(followErr, domain.ErrTurnSuperseded) {
					t.Fatalf("想定外のエラーなのだ: %v", followErr)
				}
				continue
			}
			if req := stories.last(); req.Image == nil || req.Image.Data[0] != 5 {
				t.Fatalf("フォローアップの画像が違うのだ: %+v", req.Image)
			}
		}
	})

	t.Run("直前のターンがなければエラーなのだ", func(t *testing.T) {
		o := newTestOrchestrator(t, &fakeStories{}, &fakeMedia{})
		if _, err := o.SubmitFollowUp(ctx, "q"); !errors.Is(err, domain.ErrNoRetainedTurn) {
			t.Errorf("ErrNoRetainedTurn を期待したのだ: %v", err)
		}
	})
}

func TestOrchestrator_Reset(t *testing.T) {
	ctx := context.Background()

	t.Run("すべての状態と話題履歴を破棄するのだ", func(t *testing.T) {
		o := newTestOrchestrator(t, &fakeStories{}, &fakeMedia{})
		o.Submit(ctx, Input{Question: "q", Image: &domain.ImageInput{Data: []byte{1}, MIMEType: "image/png"}})

		o.Reset()
		view := o.Snapshot()
		if view.State != domain.StateIdle || view.Story != nil || !view.Media.IsEmpty() || view.ErrorMessage != "" {
			t.Errorf("リセットされていないのだ: %+v", view)
		}
		if len(view.Topics) != 0 {
			t.Errorf("話題履歴が残っているのだ: %v", view.Topics)
		}
		if _, err := o.SubmitFollowUp(ctx, "again"); !errors.Is(err, domain.ErrNoRetainedTurn) {
			t.Errorf("保存済みの入力が残っているのだ: %v", err)
		}
	})

	t.Run("Error状態からもIdleに戻るのだ", func(t *testing.T) {
		o := newTestOrchestrator(t, &fakeStories{err: errors.New("x")}, &fakeMedia{})
		o.Submit(ctx, Input{Question: "q"})
		o.Reset()
		if o.Snapshot().State != domain.StateIdle {
			t.Error("Idle に戻っていないのだ")
		}
	})

	t.Run("リセット後に届いた本文の結果は反映されないのだ", func(t *testing.T) {
		stories := &fakeStories{gate: make(chan struct{}), started: make(chan struct{}, 1)}
		media := &fakeMedia{}
		o := newTestOrchestrator(t, stories, media)

		done := make(chan error, 1)
		go func() {
			_, err := o.Submit(ctx, Input{Question: "late"})
			done <- err
		}()
		<-stories.started
		o.Reset()
		close(stories.gate)

		if err := <-done; !errors.Is(err, domain.ErrTurnSuperseded) {
			t.Errorf("ErrTurnSuperseded を期待したのだ: %v", err)
		}
		view := o.Snapshot()
		if view.State != domain.StateIdle || view.Story != nil || len(view.Topics) != 0 {
			t.Errorf("古い結果が状態に反映されたのだ: %+v", view)
		}
		if media.calls != 0 {
			t.Errorf("破棄済みのターンでメディア生成が呼ばれたのだ: %d", media.calls)
		}
	})

	t.Run("リセット後に届いたメディアの結果は反映されないのだ", func(t *testing.T) {
		media := &fakeMedia{gate: make(chan struct{}), started: make(chan struct{}, 1)}
		o := newTestOrchestrator(t, &fakeStories{}, media)

		done := make(chan error, 1)
		go func() {
			_, err := o.Submit(ctx, Input{Question: "late media"})
			done <- err
		}()
		<-media.started
		if got := o.Snapshot().State; got != domain.StateGeneratingMedia {
			t.Errorf("状態 期待値 generating_media, 実際の値 %s", got)
		}
		o.Reset()
		close(media.gate)

		if err := <-done; !errors.Is(err, domain.ErrTurnSuperseded) {
			t.Errorf("ErrTurnSuperseded を期待したのだ: %v", err)
		}
		if view := o.Snapshot(); view.State != domain.StateIdle || !view.Media.IsEmpty() {
			t.Errorf("古いメディアが反映されたのだ: %+v", view)
		}
	})

	t.Run("リセット直後の新しい送信は古いターンに邪魔されないのだ", func(t *testing.T) {
		stories := &fakeStories{gate: make(chan struct{}), started: make(chan struct{}, 2)}
		o := newTestOrchestrator(t, stories, &fakeMedia{})

		oldDone := make(chan error, 1)
		go func() {
			_, err := o.Submit(ctx, Input{Question: "old"})
			oldDone <- err
		}()
		<-stories.started
		o.Reset()

		newDone := make(chan View, 1)
		go func() {
			v, _ := o.Submit(ctx, Input{Question: "new"})
			newDone <- v
		}()
		<-stories.started
		close(stories.gate)

		if err := <-oldDone; !errors.Is(err, domain.ErrTurnSuperseded) {
			t.Errorf("古いターンは ErrTurnSuperseded を期待したのだ: %v", err)
		}
		select {
		case v := <-newDone:
			if v.State != domain.StatePlaying || len(v.Topics) != 1 {
				t.Errorf("新しいターンが正しく完了していないのだ: %+v", v)
			}
		case <-time.After(time.Second):
			t.Fatal("新しいターンが終わらないのだ")
		}
	})
}

type storyFunc func() (*domain.StoryResult, error)

func (f storyFunc) GenerateStory(context.Context, *domain.GenerationRequest) (*domain.StoryResult, error) {
	return f()
}

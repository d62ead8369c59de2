package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/shouni/go-story-kit/pkg/domain"
	"github.com/shouni/go-story-kit/pkg/generator"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// defaultRateBurst は音声と挿絵の 2 本を同時に通すためのバースト値なのだ。
const defaultRateBurst = 2

// Outcome はファンアウトの 1 本分の結果なのだ。Err が nil なら Handle が有効なのだ。
type Outcome struct {
	Kind   domain.MediaKind
	Handle string
	Err    error
}

// Result は両方の呼び出しが決着した後の結果です。
type Result struct {
	Bundle   domain.MediaBundle
	Outcomes []Outcome
}

// Failures は失敗した分の MediaError だけを返すのだ。
func (r Result) Failures() []error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errs
}

// MediaFanOut は音声合成と挿絵生成を並行に実行し、それぞれの成否を独立に集める部分失敗許容の合流です。
// 片方の失敗がもう片方の成功結果を捨てることはありません。
type MediaFanOut struct {
	speech      generator.SpeechSynthesizer
	illustrator generator.Illustrator
	saver       MediaSaver
	limiter     *rate.Limiter
}

// NewMediaFanOut は MediaFanOut を初期化するのだ。interval が 0 以下なら上流呼び出しの間隔制御はしないのだ。
func NewMediaFanOut(speech generator.SpeechSynthesizer, illustrator generator.Illustrator, saver MediaSaver, interval time.Duration) *MediaFanOut {
	var limiter *rate.Limiter
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), defaultRateBurst)
	}
	return &MediaFanOut{
		speech:      speech,
		illustrator: illustrator,
		saver:       saver,
		limiter:     limiter,
	}
}

// Run は両方の呼び出しが成功または失敗で決着するまで待ち、MediaBundle を返すのだ。
// この関数自体は失敗しないのだ。個々の失敗は Result.Outcomes に記録されるのだ。
func (f *MediaFanOut) Run(ctx context.Context, audioText, imagePrompt string) Result {
	var (
		eg      errgroup.Group
		audioO  = Outcome{Kind: domain.MediaAudio}
		imageO  = Outcome{Kind: domain.MediaImage}
		started = time.Now()
	)

	// 片方が失敗してももう片方は最後まで走らせるのだ。
	eg.Go(func() error {
		audioO.Handle, audioO.Err = f.produce(ctx, domain.MediaAudio, func(ctx context.Context) (*generator.Media, error) {
			return f.speech.Synthesize(ctx, audioText)
		})
		return nil
	})
	eg.Go(func() error {
		imageO.Handle, imageO.Err = f.produce(ctx, domain.MediaImage, func(ctx context.Context) (*generator.Media, error) {
			return f.illustrator.Illustrate(ctx, imagePrompt)
		})
		return nil
	})
	_ = eg.Wait()

	res := Result{Outcomes: []Outcome{audioO, imageO}}
	if audioO.Err == nil {
		res.Bundle.AudioURL = audioO.Handle
	}
	if imageO.Err == nil {
		res.Bundle.ImageURL = imageO.Handle
	}

	slog.DebugContext(ctx, "メディア生成が決着しました",
		"audio_ok", audioO.Err == nil,
		"image_ok", imageO.Err == nil,
		"elapsed", time.Since(started),
	)
	return res
}

// produce は 1 本分の生成と保存を行い、失敗を MediaError にそろえて返すのだ。
func (f *MediaFanOut) produce(ctx context.Context, kind domain.MediaKind, generate func(context.Context) (*generator.Media, error)) (handle string, err error) {
	defer func() {
		if r := recover(); r != nil {
			handle, err = "", &domain.MediaError{Kind: kind, Err: panicError{value: r}}
		}
	}()

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", &domain.MediaError{Kind: kind, Err: err}
		}
	}

	media, err := generate(ctx)
	if err != nil {
		return "", asMediaError(kind, err)
	}
	if media == nil || len(media.Data) == 0 {
		return "", &domain.MediaError{Kind: kind, Err: domain.ErrNoMediaInResult}
	}

	handle, err = f.saver.Save(ctx, kind, media.Data, media.MIMEType)
	if err != nil {
		return "", &domain.MediaError{Kind: kind, Err: err}
	}
	return handle, nil
}

package generator

import (
	"context"

	"github.com/shouni/go-story-kit/pkg/domain"
	"google.golang.org/genai"
)

// ContentGenerator は Gemini の GenerateContent 呼び出しを抽象化します。
// genai.Client の Models フィールドがこのインターフェースを満たします。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// StoryGenerator は GenerationRequest からストーリー本文を生成します。
// 失敗はすべて domain.RequestError として返します。
type StoryGenerator interface {
	GenerateStory(ctx context.Context, req *domain.GenerationRequest) (*domain.StoryResult, error)
}

// SpeechSynthesizer は読み上げテキストから再生可能な音声ファイルを生成します。
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (*Media, error)
}

// Illustrator は画像プロンプトから挿絵を生成します。
type Illustrator interface {
	Illustrate(ctx context.Context, prompt string) (*Media, error)
}

// Media は生成されたメディアのバイナリと MIME タイプなのだ。
type Media struct {
	Data     []byte
	MIMEType string
}

package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shouni/go-story-kit/pkg/domain"
	"google.golang.org/genai"
)

// GeminiIllustrator は Gemini の画像出力モデルで挿絵を生成します。
type GeminiIllustrator struct {
	client      ContentGenerator
	model       string
	styleSuffix string
	timeout     time.Duration
}

func NewGeminiIllustrator(client ContentGenerator, model, styleSuffix string, timeout time.Duration) *GeminiIllustrator {
	return &GeminiIllustrator{
		client:      client,
		model:       model,
		styleSuffix: styleSuffix,
		timeout:     timeout,
	}
}

// Illustrate はプロンプトに画風を付け足して画像を生成するのだ。
func (g *GeminiIllustrator) Illustrate(ctx context.Context, prompt string) (*Media, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, &domain.MediaError{Kind: domain.MediaImage, Err: fmt.Errorf("画像プロンプトが空です")}
	}
	if g.styleSuffix != "" {
		prompt = prompt + ", " + g.styleSuffix
	}

	cfg := &genai.GenerateContentConfig{}
	cfg.ResponseModalities = append(cfg.ResponseModalities, "IMAGE", "TEXT")

	callCtx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.GenerateContent(callCtx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		logAPIError(ctx, "image", err)
		return nil, &domain.MediaError{Kind: domain.MediaImage, Err: err}
	}

	blob := findInlineData(resp, "image/")
	if blob == nil {
		return nil, &domain.MediaError{Kind: domain.MediaImage, Err: domain.ErrNoMediaInResult}
	}
	return &Media{Data: blob.Data, MIMEType: blob.MIMEType}, nil
}

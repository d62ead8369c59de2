package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-story-kit/pkg/domain"
	"github.com/shouni/go-story-kit/pkg/parser"
	"github.com/shouni/go-story-kit/pkg/prompts"
	"google.golang.org/genai"
)

// GeminiStoryGenerator は Gemini にストーリー JSON を生成させる StoryGenerator の実装です。
type GeminiStoryGenerator struct {
	client       ContentGenerator
	model        string
	systemPrompt string
	builder      *prompts.RequestBuilder
	parser       parser.Parser
	timeout      time.Duration
	temperature  float32
}

// StoryOptions は GeminiStoryGenerator の生成パラメータなのだ。
type StoryOptions struct {
	Model       string
	Timeout     time.Duration
	Temperature float32
}

// NewGeminiStoryGenerator はシステムプロンプトを組み立てて GeminiStoryGenerator を初期化するのだ。
func NewGeminiStoryGenerator(client ContentGenerator, pb prompts.PromptBuilder, p parser.Parser, opts StoryOptions) (*GeminiStoryGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("client は必須です")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("ストーリー生成モデルが指定されていません")
	}
	if pb == nil {
		return nil, fmt.Errorf("PromptBuilder は必須です")
	}
	if p == nil {
		p = parser.NewStoryParser()
	}

	system, err := pb.Build(prompts.ModeStory, prompts.TemplateData{})
	if err != nil {
		return nil, fmt.Errorf("システムプロンプトの構築に失敗しました: %w", err)
	}

	return &GeminiStoryGenerator{
		client:       client,
		model:        opts.Model,
		systemPrompt: system,
		builder:      prompts.NewRequestBuilder(),
		parser:       p,
		timeout:      opts.Timeout,
		temperature:  opts.Temperature,
	}, nil
}

// GenerateStory はマルチモーダル入力を組み立てて呼び出し、応答を StoryResult に変換するのだ。
func (g *GeminiStoryGenerator) GenerateStory(ctx context.Context, req *domain.GenerationRequest) (*domain.StoryResult, error) {
	content, err := g.builder.Build(req)
	if err != nil {
		return nil, &domain.RequestError{Err: err}
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(g.systemPrompt)}},
		ResponseMIMEType:  "application/json",
	}
	if g.temperature > 0 {
		cfg.Temperature = genai.Ptr(g.temperature)
	}

	callCtx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	slog.DebugContext(ctx, "ストーリー生成を呼び出します",
		"model", g.model,
		"has_image", req.HasImage(),
		"prev_topics", len(req.ContextWindow),
	)

	resp, err := g.client.GenerateContent(callCtx, g.model, []*genai.Content{content}, cfg)
	if err != nil {
		logAPIError(ctx, "story", err)
		return nil, &domain.RequestError{Err: fmt.Errorf("GenerateContent: %w", err)}
	}

	return g.parser.Parse(collectText(resp))
}

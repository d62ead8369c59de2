package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-story-kit/internal/config"
	"github.com/shouni/go-story-kit/pkg/generator"
	"github.com/shouni/go-story-kit/pkg/parser"
	"github.com/shouni/go-story-kit/pkg/pipeline"
	"github.com/shouni/go-story-kit/pkg/prompts"
	"github.com/shouni/go-story-kit/pkg/publisher"
	"github.com/shouni/go-story-kit/pkg/session"
	"github.com/shouni/go-story-kit/pkg/workflow"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"google.golang.org/genai"
)

// BuildAppContext は設定から Gemini クライアント、出力先、オーケストレーターを組み立てるのだ。
func BuildAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	client, err := InitializeAIClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	writer, err := InitializeWriter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	orch, err := BuildOrchestrator(cfg, client.Models, writer)
	if err != nil {
		return nil, err
	}

	appCtx := NewAppContext(cfg, writer, orch)
	return &appCtx, nil
}

// BuildOrchestrator は ContentGenerator と OutputWriter から Orchestrator を構築します。
// テストでは ContentGenerator に偽物を渡せるのだ。
func BuildOrchestrator(cfg *config.Config, client generator.ContentGenerator, writer publisher.OutputWriter) (*workflow.Orchestrator, error) {
	pb, err := prompts.NewTextPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("プロンプトビルダーの作成に失敗しました: %w", err)
	}

	stories, err := generator.NewGeminiStoryGenerator(client, pb, parser.NewStoryParser(), generator.StoryOptions{
		Model:       cfg.StoryModel,
		Timeout:     cfg.RequestTimeout,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("ストーリー生成エンジンの初期化に失敗しました: %w", err)
	}

	speech := generator.NewGeminiSpeechSynthesizer(client, cfg.TTSModel, cfg.Voice, cfg.RequestTimeout)
	illustrator := generator.NewGeminiIllustrator(client, cfg.ImageModel, cfg.ImageStyleSuffix, cfg.RequestTimeout)
	store := publisher.NewMediaStore(writer, cfg.MediaTTL)
	fanOut := pipeline.NewMediaFanOut(speech, illustrator, store, cfg.MediaRateInterval)

	return workflow.NewOrchestrator(stories, fanOut, session.New(session.DefaultContextCapacity))
}

// InitializeAIClient は genai クライアントを初期化します。
// APIキーがなくプロジェクトIDがあれば Vertex AI を使うのだ。
func InitializeAIClient(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.UseVertexAI() {
		clientConfig = &genai.ClientConfig{
			Project:  cfg.ProjectID,
			Location: cfg.LocationID,
			Backend:  genai.BackendVertexAI,
		}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return client, nil
}

// InitializeWriter は MEDIA_OUTPUT の値に応じた OutputWriter を返すのだ。
func InitializeWriter(ctx context.Context, cfg *config.Config) (publisher.OutputWriter, error) {
	target := cfg.MediaOutput
	switch {
	case target == "" || target == config.MediaOutputData:
		slog.Debug("メディアは data: URL として返します")
		return publisher.NewDataURLWriter(), nil
	case target == config.MediaOutputMemory:
		slog.Debug("メディアはメモリ上に保持します", "ttl", cfg.MediaTTL)
		return publisher.NewMemoryWriter(cfg.MediaTTL), nil
	case publisher.IsS3URI(target):
		return InitializeS3Writer(ctx, cfg, target)
	default:
		slog.Debug("メディアはローカルに保存します", "dir", target)
		return publisher.NewLocalWriter(target), nil
	}
}

// InitializeS3Writer は s3://bucket/prefix に書き込む OutputWriter を作るのだ。
// 認証情報は AWS SDK の既定のチェーンから読み込むのだ。
func InitializeS3Writer(ctx context.Context, cfg *config.Config, uri string) (publisher.OutputWriter, error) {
	bucket, prefix, err := publisher.ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("AWS 設定の読み込みに失敗しました: %w", err)
	}
	slog.Debug("メディアは S3 に保存します", "bucket", bucket, "prefix", prefix)
	return publisher.NewS3Writer(s3.NewFromConfig(awsCfg), bucket, prefix), nil
}

package workflow

import (
	"context"

	"github.com/shouni/go-story-kit/pkg/domain"
	"github.com/shouni/go-story-kit/pkg/pipeline"
)

// StoryGenerator は GenerationRequest からストーリー本文を生成する責務を持ちます。
type StoryGenerator interface {
	GenerateStory(ctx context.Context, req *domain.GenerationRequest) (*domain.StoryResult, error)
}

// MediaRunner は音声と挿絵を並行生成し、両方が決着した結果を返す責務を持ちます。
type MediaRunner interface {
	Run(ctx context.Context, audioText, imagePrompt string) pipeline.Result
}

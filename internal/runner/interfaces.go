package runner

import (
	"context"

	"github.com/shouni/go-story-kit/pkg/workflow"
)

// StorySession は Runner から見たオーケストレーターの操作なのだ。
type StorySession interface {
	Submit(ctx context.Context, in workflow.Input) (workflow.View, error)
	SubmitFollowUp(ctx context.Context, question string) (workflow.View, error)
	Reset()
	Snapshot() workflow.View
}

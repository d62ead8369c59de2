package workflow

import (
	"github.com/shouni/go-story-kit/pkg/domain"
)

// Input はトップレベル送信の入力なのだ。画像は任意なのだ。
type Input struct {
	Image           *domain.ImageInput
	Question        string
	Personalization domain.Personalization
}

// View はプレゼンテーション層に渡すための読み取り専用のスナップショットです。
type View struct {
	SessionID    string
	State        domain.State
	Turn         uint64
	Story        *domain.StoryResult
	Media        domain.MediaBundle
	ErrorMessage string
	Topics       []string
}

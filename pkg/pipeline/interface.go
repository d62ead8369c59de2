package pipeline

import (
	"context"

	"github.com/shouni/go-story-kit/pkg/domain"
)

// MediaSaver は生成メディアを保存してハンドルを返すインターフェースです。
// publisher.MediaStore がこれを満たします。
type MediaSaver interface {
	Save(ctx context.Context, kind domain.MediaKind, data []byte, mimeType string) (string, error)
}

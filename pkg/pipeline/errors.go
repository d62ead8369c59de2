package pipeline

import (
	"errors"
	"fmt"

	"github.com/shouni/go-story-kit/pkg/domain"
)

type panicError struct {
	value any
}

func (e panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// asMediaError はすでに MediaError ならそのまま、そうでなければ包んで返すのだ。
func asMediaError(kind domain.MediaKind, err error) error {
	var mediaErr *domain.MediaError
	if errors.As(err, &mediaErr) {
		return err
	}
	return &domain.MediaError{Kind: kind, Err: err}
}

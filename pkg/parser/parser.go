package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/shouni/go-story-kit/pkg/domain"
)

// Parser はモデルのテキスト応答を StoryResult に変換するインターフェースです。
type Parser interface {
	Parse(raw string) (*domain.StoryResult, error)
}

// StoryParser はフェンス除去、JSON デコード、形状検証を順番に行う標準実装です。
type StoryParser struct{}

func NewStoryParser() *StoryParser {
	return &StoryParser{}
}

// Parse は応答を解析し、必須フィールドを検証した StoryResult を返すのだ。
// 失敗したときはすべて domain.RequestError として返すのだ。
func (p *StoryParser) Parse(raw string) (*domain.StoryResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &domain.RequestError{Err: domain.ErrEmptyResponse}
	}

	// 先頭の候補が読めなくても、残りの候補で読めればそれを採用するのだ
	var firstErr error
	for _, body := range bodyCandidates(raw) {
		story, err := decodeStory(body, raw)
		if err == nil {
			return story, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, &domain.RequestError{Err: firstErr}
}

// decodeStory は 1 つの候補を StoryResult にデコードして検証するのだ。
func decodeStory(body, raw string) (*domain.StoryResult, error) {
	var story domain.StoryResult
	if err := unmarshalJSON([]byte(body), &story); err != nil {
		return nil, fmt.Errorf("応答に含まれるJSONの解析に失敗しました (応答抜粋: %q): %w", truncateString(raw, 200), err)
	}
	if err := story.Validate(); err != nil {
		return nil, err
	}
	return &story, nil
}

// unmarshalJSON は構文エラーのときだけ jsonrepair で修復してから再デコードするのだ。
func unmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err
	}

	fixed, repairErr := jsonrepair.JSONRepair(string(data))
	if repairErr != nil {
		return fmt.Errorf("%w (修復にも失敗しました: %v)", err, repairErr)
	}
	slog.Debug("壊れたJSONを修復して再デコードします", "offset", syntaxErr.Offset)
	return json.Unmarshal([]byte(fixed), v)
}

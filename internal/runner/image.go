package runner

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/shouni/go-story-kit/pkg/domain"
)

// LoadImage はローカルの画像ファイルを読み込み、中身から MIME タイプを判定するのだ。
// 空のパスなら画像なしとして nil を返すのだ。
func LoadImage(path string) (*domain.ImageInput, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("画像ファイル '%s' の読み込みに失敗しました: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("画像ファイル '%s' が空です", path)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("画像ファイル '%s' は画像ではありません (%s)", path, mimeType)
	}
	return &domain.ImageInput{Data: data, MIMEType: mimeType}, nil
}

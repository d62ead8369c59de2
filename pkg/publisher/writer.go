package publisher

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// OutputWriter はメディアを保存し、再生・表示に使えるハンドル（URL）を返すインターフェースです。
type OutputWriter interface {
	Write(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// LocalWriter はローカルディレクトリに書き出し、file:// のハンドルを返すのだ。
type LocalWriter struct {
	baseDir string
}

func NewLocalWriter(baseDir string) *LocalWriter {
	return &LocalWriter{baseDir: baseDir}
}

func (w *LocalWriter) Write(_ context.Context, path string, data []byte, _ string) (string, error) {
	fullPath, err := ResolveOutputPath(w.baseDir, path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("ファイルの書き込みに失敗しました (path: %s): %w", fullPath, err)
	}

	abs, err := filepath.Abs(fullPath)
	if err != nil {
		abs = fullPath
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// MemoryScheme はメモリ上に保持したメディアのハンドルの接頭辞なのだ。
const MemoryScheme = "mem://"

type memoryEntry struct {
	data        []byte
	contentType string
}

// MemoryWriter は go-cache にメディアを保持し、TTL 経過後に自動で破棄するのだ。
// セッションを越えて永続化はしないのだ。
type MemoryWriter struct {
	store *cache.Cache
}

// NewMemoryWriter は有効期限 ttl の MemoryWriter を作るのだ。
func NewMemoryWriter(ttl time.Duration) *MemoryWriter {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &MemoryWriter{store: cache.New(ttl, cleanupInterval(ttl))}
}

func (w *MemoryWriter) Write(_ context.Context, path string, data []byte, contentType string) (string, error) {
	stored := make([]byte, len(data))
	copy(stored, data)
	w.store.SetDefault(path, memoryEntry{data: stored, contentType: contentType})
	return MemoryScheme + path, nil
}

// Open はハンドルからメディアを取り出すのだ。期限切れや未登録なら ok が false なのだ。
func (w *MemoryWriter) Open(handle string) (data []byte, contentType string, ok bool) {
	v, found := w.store.Get(strings.TrimPrefix(handle, MemoryScheme))
	if !found {
		return nil, "", false
	}
	entry, ok := v.(memoryEntry)
	if !ok {
		return nil, "", false
	}
	return entry.data, entry.contentType, true
}

// Len は保持しているメディアの数なのだ。
func (w *MemoryWriter) Len() int {
	return w.store.ItemCount()
}

// DataURLWriter は保存せず、data: URL に埋め込んで返すのだ。
type DataURLWriter struct{}

func NewDataURLWriter() *DataURLWriter {
	return &DataURLWriter{}
}

func (w *DataURLWriter) Write(_ context.Context, _ string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl == cache.NoExpiration {
		return 0
	}
	return 2 * ttl
}

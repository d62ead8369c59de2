package publisher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-story-kit/pkg/asset"
	"github.com/shouni/go-story-kit/pkg/domain"
	"golang.org/x/sync/singleflight"
)

const (
	defaultMemoExpiration = 30 * time.Minute
	memoCleanupInterval   = 1 * time.Hour
)

// MediaStore は生成メディアを OutputWriter に保存してハンドルを払い出します。
// 同一内容の保存はハッシュで重複排除し、同時に来た保存要求は 1 回の書き込みにまとめます。
type MediaStore struct {
	writer OutputWriter
	memo   *cache.Cache // content hash -> handle
	group  singleflight.Group
}

// NewMediaStore は writer を使う MediaStore を作るのだ。
// ttl は保存先の保持期間で、重複排除の記憶はその半分で失効させるのだ。
func NewMediaStore(writer OutputWriter, ttl time.Duration) *MediaStore {
	memoTTL := defaultMemoExpiration
	if ttl > 0 && ttl/2 < memoTTL {
		memoTTL = ttl / 2
	}
	return &MediaStore{
		writer: writer,
		memo:   cache.New(memoTTL, memoCleanupInterval),
	}
}

// Save はメディアを保存してハンドルを返すのだ。
func (s *MediaStore) Save(ctx context.Context, kind domain.MediaKind, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%s のデータが空です", kind)
	}

	sum := sha256.Sum256(data)
	key := string(kind) + ":" + hex.EncodeToString(sum[:])

	if handle, ok := s.memo.Get(key); ok {
		return handle.(string), nil
	}

	val, err, shared := s.group.Do(key, func() (interface{}, error) {
		// 待機中に別のゴルーチンが保存を終えている可能性があるので再確認するのだ
		if handle, ok := s.memo.Get(key); ok {
			return handle, nil
		}

		name, err := asset.MediaPath(kind, uuid.NewString(), mimeType)
		if err != nil {
			return nil, err
		}
		handle, err := s.writer.Write(ctx, name, data, mimeType)
		if err != nil {
			return nil, err
		}
		s.memo.SetDefault(key, handle)
		return handle, nil
	})
	if err != nil {
		return "", fmt.Errorf("%s の保存に失敗しました: %w", kind, err)
	}

	handle, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("unexpected return type from singleflight: %T", val)
	}
	slog.DebugContext(ctx, "メディアを保存しました", "kind", kind, "bytes", len(data), "shared", shared)
	return handle, nil
}

package asset

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/shouni/go-story-kit/pkg/domain"
)

const (
	// DefaultAudioDir は読み上げ音声を格納するデフォルトのディレクトリ名です。
	DefaultAudioDir = "audio"
	// DefaultImageDir は生成された挿絵を格納するデフォルトのディレクトリ名です。
	DefaultImageDir = "images"
	// DefaultExtension は MIME タイプから拡張子を決められないときに使います。
	DefaultExtension = ".bin"
)

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"audio/wav":  ".wav",
}

// MediaFileRegex は MediaPath が生成するファイル名 (<uuid>.wav 等) に一致します。
var MediaFileRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.[a-z0-9]+$`)

// DirFor はメディアの種類ごとの保存ディレクトリを返します。
func DirFor(kind domain.MediaKind) string {
	switch kind {
	case domain.MediaAudio:
		return DefaultAudioDir
	case domain.MediaImage:
		return DefaultImageDir
	default:
		return strings.ToLower(string(kind))
	}
}

// ExtensionFor は MIME タイプから保存用の拡張子を決めるのだ。
// パラメータ付き (image/png; charset=...) でも本体だけを見るのだ。
func ExtensionFor(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	if ext, ok := extensions[strings.ToLower(strings.TrimSpace(base))]; ok {
		return ext
	}
	return DefaultExtension
}

// MediaPath は Writer に渡す相対パスを生成します。id は UUID 形式でなければならないのだ。
// 例: (MediaAudio, "1f0e...", "audio/wav") -> "audio/1f0e....wav"
func MediaPath(kind domain.MediaKind, id, mimeType string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("メディア ID が空です")
	}
	if strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("メディア ID にパス区切りは使えません: %s", id)
	}
	name := id + ExtensionFor(mimeType)
	if !MediaFileRegex.MatchString(name) {
		return "", fmt.Errorf("メディアのファイル名が不正です: %s", name)
	}
	return path.Join(DirFor(kind), name), nil
}

package publisher

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// IsS3URI は s3:// で始まるかを返すのだ。
func IsS3URI(raw string) bool {
	return strings.HasPrefix(strings.ToLower(raw), "s3://")
}

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から、
// S3/ローカルを考慮した最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	if IsS3URI(baseDir) {
		u, err := url.Parse(baseDir)
		if err != nil {
			return "", fmt.Errorf("無効なS3 URIです: %w", err)
		}

		// url.JoinPath はパス部分のみを安全に結合し、スキーム部分を保護します
		u.Path, err = url.JoinPath(u.Path, fileName)
		if err != nil {
			return "", fmt.Errorf("S3パスの結合に失敗しました: %w", err)
		}
		return u.String(), nil
	}
	return filepath.Join(baseDir, fileName), nil
}

// ParseS3URI は s3://bucket/prefix をバケット名とプレフィックスに分解するのだ。
func ParseS3URI(raw string) (bucket, prefix string, err error) {
	if !IsS3URI(raw) {
		return "", "", fmt.Errorf("S3 URI ではありません: %s", raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("無効なS3 URIです: %w", err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("S3 URI にバケット名がありません: %s", raw)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

// SplitOutputPath は出力先を、Writer に渡すディレクトリとファイル名に分けるのだ。
// S3 URI はスキームの "//" を壊さないように最後のスラッシュで分けます。
func SplitOutputPath(raw string) (dir, name string) {
	if IsS3URI(raw) {
		i := strings.LastIndex(raw, "/")
		if i < len("s3://") {
			return raw, ""
		}
		return raw[:i], raw[i+1:]
	}
	return filepath.Dir(raw), filepath.Base(raw)
}

package publisher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3PutAPI は S3Writer が使う S3 API を抽象化します。*s3.Client がこれを満たします。
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Writer は S3（または互換ストレージ）にメディアを保存し、s3:// のハンドルを返すのだ。
type S3Writer struct {
	client S3PutAPI
	bucket string
	prefix string
}

func NewS3Writer(client S3PutAPI, bucket, prefix string) *S3Writer {
	return &S3Writer{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (w *S3Writer) key(path string) string {
	path = strings.TrimLeft(path, "/")
	if w.prefix == "" {
		return path
	}
	return w.prefix + "/" + path
}

func (w *S3Writer) Write(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	key := w.key(path)
	input := &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := w.client.PutObject(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			slog.WarnContext(ctx, "S3 へのアップロードが拒否されました",
				"bucket", w.bucket,
				"key", key,
				"code", apiErr.ErrorCode(),
				"message", apiErr.ErrorMessage(),
			)
		}
		return "", fmt.Errorf("S3 への書き込みに失敗しました (s3://%s/%s): %w", w.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", w.bucket, key), nil
}

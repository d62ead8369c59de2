package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/go-story-kit/pkg/audio"
	"github.com/shouni/go-story-kit/pkg/publisher"
)

// WAVRunner は PCM ファイルを WAV に変換して出力先に書き込むユーティリティなのだ。
type WAVRunner struct {
	writer publisher.OutputWriter
}

func NewWAVRunner(writer publisher.OutputWriter) *WAVRunner {
	return &WAVRunner{writer: writer}
}

// Run は src の PCM（base64 なら isBase64 を true に）を WAV にして name で保存し、ハンドルを返すのだ。
func (r *WAVRunner) Run(ctx context.Context, src io.Reader, name string, sampleRate int, isBase64 bool) (string, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("PCM の読み込みに失敗しました: %w", err)
	}

	pcm := raw
	if isBase64 {
		pcm, err = audio.DecodeBase64PCM(string(raw))
		if err != nil {
			return "", err
		}
	}

	wav, err := audio.EncodeWAV(pcm, sampleRate)
	if err != nil {
		return "", fmt.Errorf("WAV への変換に失敗しました: %w", err)
	}

	handle, err := r.writer.Write(ctx, name, wav, audio.WAVMimeType)
	if err != nil {
		return "", fmt.Errorf("WAV の保存に失敗しました: %w", err)
	}
	slog.InfoContext(ctx, "WAV を書き出しました", "handle", handle, "pcm_bytes", len(pcm), "sample_rate", sampleRate)
	return handle, nil
}

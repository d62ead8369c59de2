package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shouni/go-story-kit/internal/config"
	"github.com/shouni/go-story-kit/pkg/audio"
)

func TestExecuteWAV(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "voice.pcm")
	if err := os.WriteFile(in, []byte{1, 2, 3, 4, 5, 6}, 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "nested", "voice.wav")

	handle, err := ExecuteWAV(context.Background(), &config.Config{}, config.WAVOptions{
		Input:      in,
		Output:     out,
		SampleRate: audio.DefaultSampleRate,
	})
	if err != nil {
		t.Fatalf("変換に失敗したのだ: %v", err)
	}
	if handle == "" {
		t.Error("ハンドルが空なのだ")
	}

	wav, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("出力ファイルが読めないのだ: %v", err)
	}
	if len(wav) != audio.HeaderSize+6 || !bytes.Equal(wav[audio.HeaderSize:], []byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("WAV の内容が想定と違うのだ: len=%d", len(wav))
	}
}

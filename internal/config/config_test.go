package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Run("未設定なら既定値になるのだ", func(t *testing.T) {
		for _, key := range []string{"GEMINI_MODEL", "MEDIA_OUTPUT", "MEDIA_TTL", "REQUEST_TIMEOUT", "TTS_VOICE"} {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
		cfg := LoadConfig()
		if cfg.StoryModel != DefaultStoryModel {
			t.Errorf("期待値 %s, 実際の値 %s", DefaultStoryModel, cfg.StoryModel)
		}
		if cfg.MediaOutput != DefaultMediaOutput || cfg.Voice != DefaultVoice {
			t.Errorf("既定値が違うのだ: %+v", cfg)
		}
		if cfg.MediaTTL != DefaultMediaTTL || cfg.RequestTimeout != DefaultRequestTimeout {
			t.Errorf("期間の既定値が違うのだ: %v %v", cfg.MediaTTL, cfg.RequestTimeout)
		}
	})

	t.Run("環境変数の値を読むのだ", func(t *testing.T) {
		t.Setenv("GEMINI_MODEL", "custom-model")
		t.Setenv("MEDIA_TTL", "5m")
		t.Setenv("MEDIA_OUTPUT", "s3://bucket/prefix")
		cfg := LoadConfig()
		if cfg.StoryModel != "custom-model" || cfg.MediaTTL != 5*time.Minute || cfg.MediaOutput != "s3://bucket/prefix" {
			t.Errorf("環境変数が反映されていないのだ: %+v", cfg)
		}
	})

	t.Run("解釈できない期間は既定値に戻るのだ", func(t *testing.T) {
		t.Setenv("REQUEST_TIMEOUT", "soon")
		if cfg := LoadConfig(); cfg.RequestTimeout != DefaultRequestTimeout {
			t.Errorf("期待値 %v, 実際の値 %v", DefaultRequestTimeout, cfg.RequestTimeout)
		}
	})
}

func TestConfig_UseVertexAI(t *testing.T) {
	if (&Config{GeminiAPIKey: "k", ProjectID: "p"}).UseVertexAI() {
		t.Error("APIキーがあるのに Vertex AI になったのだ")
	}
	if !(&Config{ProjectID: "p"}).UseVertexAI() {
		t.Error("プロジェクトIDだけなら Vertex AI を使うべきなのだ")
	}
}

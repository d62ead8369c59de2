package config

import (
	"log/slog"
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultStoryModel        = "gemini-2.5-flash"
	DefaultTTSModel          = "gemini-2.5-flash-preview-tts"
	DefaultImageModel        = "gemini-2.5-flash-image"
	DefaultVoice             = "Kore"
	DefaultMediaOutput       = "data" // data: URL に埋め込むのだ
	DefaultMediaTTL          = 30 * time.Minute
	DefaultMediaRateInterval = 0 * time.Second // 0 なら間隔制御しないのだ
	DefaultRequestTimeout    = 2 * time.Minute
	DefaultTemperature       = 0.8
	DefaultImageStyleSuffix  = "soft watercolor children's picture book illustration, warm gentle colors, friendly rounded characters, no text"
)

// メディアの出力先として特別扱いする値なのだ。
const (
	MediaOutputData   = "data"
	MediaOutputMemory = "memory"
)

// Config はアプリケーション全体の環境設定（APIキーやモデル、出力先）を保持する構造体なのだ。
type Config struct {
	ProjectID    string
	LocationID   string
	GeminiAPIKey string

	StoryModel       string
	TTSModel         string
	ImageModel       string
	Voice            string
	ImageStyleSuffix string
	Temperature      float32

	MediaOutput       string // ローカルディレクトリ, s3://bucket/prefix, memory, data
	MediaTTL          time.Duration
	MediaRateInterval time.Duration
	RequestTimeout    time.Duration
	AWSRegion         string

	Options StoryOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	return &Config{
		ProjectID:         envutil.GetEnv("PROJECT_ID", ""),
		LocationID:        envutil.GetEnv("REGION", ""),
		GeminiAPIKey:      envutil.GetEnv("GEMINI_API_KEY", ""),
		StoryModel:        envutil.GetEnv("GEMINI_MODEL", DefaultStoryModel),
		TTSModel:          envutil.GetEnv("GEMINI_TTS_MODEL", DefaultTTSModel),
		ImageModel:        envutil.GetEnv("GEMINI_IMAGE_MODEL", DefaultImageModel),
		Voice:             envutil.GetEnv("TTS_VOICE", DefaultVoice),
		ImageStyleSuffix:  envutil.GetEnv("IMAGE_STYLE_SUFFIX", DefaultImageStyleSuffix),
		Temperature:       DefaultTemperature,
		MediaOutput:       envutil.GetEnv("MEDIA_OUTPUT", DefaultMediaOutput),
		MediaTTL:          getDuration("MEDIA_TTL", DefaultMediaTTL),
		MediaRateInterval: getDuration("MEDIA_RATE_INTERVAL", DefaultMediaRateInterval),
		RequestTimeout:    getDuration("REQUEST_TIMEOUT", DefaultRequestTimeout),
		AWSRegion:         envutil.GetEnv("AWS_REGION", ""),
	}
}

// getDuration は "90s" のような値を読み、解釈できなければ既定値に戻すのだ。
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("環境変数の期間指定を解釈できないため既定値を使います", "key", key, "value", raw, "error", err)
		return fallback
	}
	return d
}

// UseVertexAI は Vertex AI バックエンドを使うべきかを返すのだ。
func (c *Config) UseVertexAI() bool {
	return c.GeminiAPIKey == "" && c.ProjectID != ""
}

// StoryOptions は CLI フラグから渡される実行時のパラメータなのだ。
type StoryOptions struct {
	// 入力関連
	ImageFile     string   // --image
	Question      string   // --question
	ChildName     string   // --child-name
	CharacterName string   // --character-name
	FollowUps     []string // --follow-up

	// 出力関連
	JSON bool // --json

	// 実行制御
	Verbose bool // --verbose
}

// WAVOptions は wav サブコマンドのパラメータなのだ。
type WAVOptions struct {
	Input      string // 入力 PCM ファイル（'-' で標準入力）
	Output     string // 出力先（ローカル or s3://...）
	SampleRate int
	Base64     bool
}

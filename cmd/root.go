package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shouni/go-story-kit/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// opts は各サブコマンドが共有する実行時オプションなのだ。
var opts config.StoryOptions

// overrides は環境変数より優先したい設定をフラグで受け取るためのものなのだ。
var overrides struct {
	storyModel  string
	ttsModel    string
	imageModel  string
	voice       string
	mediaOutput string
	timeout     time.Duration
}

var rootCmd = &cobra.Command{
	Use:   "story-kit",
	Short: "写真と質問から、子ども向けの短いお話と音声と挿絵を作るのだ。",
	Long: `Gemini で 1 ターンごとにお話（JSON）を作り、その読み上げ音声と挿絵を並行して生成するのだ。
直近 3 つの話題を覚えていて、続けて質問すると話がつながるのだよ。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

func init() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(storyCmd, sessionCmd, wavCmd)
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	pf := rootCmd.PersistentFlags()

	// --- 入力関連 ---
	pf.StringVarP(&opts.ImageFile, "image", "i", "", "お話のきっかけにする画像ファイルなのだ。")
	pf.StringVar(&opts.ChildName, "child-name", "", "お話に登場する子どもの名前なのだ（省略時は Friend）。")
	pf.StringVar(&opts.CharacterName, "character-name", "", "お話の案内役キャラクターの名前なのだ。")

	// --- AIモデル・挙動設定 ---
	pf.StringVar(&overrides.storyModel, "model", config.DefaultStoryModel, "お話を作る Gemini モデル名なのだ。")
	pf.StringVar(&overrides.ttsModel, "tts-model", config.DefaultTTSModel, "読み上げに使う Gemini モデル名なのだ。")
	pf.StringVar(&overrides.imageModel, "image-model", config.DefaultImageModel, "挿絵に使う Gemini モデル名なのだ。")
	pf.StringVar(&overrides.voice, "voice", config.DefaultVoice, "読み上げの声の名前なのだ。")
	pf.DurationVar(&overrides.timeout, "timeout", config.DefaultRequestTimeout, "Gemini への 1 リクエストのタイムアウトなのだ。")

	// --- 生成結果の出力設定 ---
	pf.StringVarP(&overrides.mediaOutput, "media-output", "o", config.DefaultMediaOutput, "メディアの保存先（data, memory, ローカル, s3://...）なのだ。")
	pf.BoolVar(&opts.JSON, "json", false, "結果を JSON で出力するのだ。")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "デバッグログを出すのだ。")
}

// preRunAppE は、ロガーを整えて、Gemini を使うコマンドの必須設定をチェックするのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if cmd.Annotations["offline"] == "true" {
		return nil
	}
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("PROJECT_ID") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY（または Vertex AI 用の PROJECT_ID）が設定されていません")
	}
	return nil
}

// loadConfig は環境変数の設定に、明示的に指定されたフラグだけを上書きするのだ。
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.LoadConfig()
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.StoryModel = overrides.storyModel
	}
	if flags.Changed("tts-model") {
		cfg.TTSModel = overrides.ttsModel
	}
	if flags.Changed("image-model") {
		cfg.ImageModel = overrides.imageModel
	}
	if flags.Changed("voice") {
		cfg.Voice = overrides.voice
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = overrides.timeout
	}
	if flags.Changed("media-output") {
		cfg.MediaOutput = overrides.mediaOutput
	}
	cfg.Options = opts
	return cfg
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

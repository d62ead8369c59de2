package builder

import (
	"github.com/shouni/go-story-kit/internal/config"
	"github.com/shouni/go-story-kit/pkg/publisher"
	"github.com/shouni/go-story-kit/pkg/workflow"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各 Runner に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config       *config.Config         // Configは、環境変数から読み込まれたグローバルな設定です（APIキー、モデル名など）。
	Options      config.StoryOptions    // Optionsは、コマンドラインから渡された実行時の設定です（画像、質問、名前など）。
	Writer       publisher.OutputWriter // Writerは、生成されたメディアを保存する出力先です。
	Orchestrator *workflow.Orchestrator // Orchestratorは、1セッション分のストーリー生成を管理します。
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(cfg *config.Config, writer publisher.OutputWriter, orch *workflow.Orchestrator) AppContext {
	return AppContext{
		Config:       cfg,
		Options:      cfg.Options,
		Writer:       writer,
		Orchestrator: orch,
	}
}

package prompts

import (
	_ "embed"
)

const (
	ModeStory = "story"

	DefaultSuggestionCount = 3
)

// TemplateData はシステムプロンプトのテンプレートに渡すデータ構造です。
type TemplateData struct {
	SuggestionCount int
}

var (
	//go:embed story_system.md
	StorySystemPrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップなのだ。
var allTemplates = map[string]string{
	ModeStory: StorySystemPrompt,
}

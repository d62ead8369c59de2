package domain

import (
	"fmt"
	"strings"
)

// StoryResult はストーリー生成モデルから返される応答全体の構造です。
type StoryResult struct {
	Meta       Meta       `json:"meta"`
	Storyboard Storyboard `json:"storyboard"`
	Visuals    Visuals    `json:"visuals"`
}

// Meta は言語判定や教育テーマなど、ストーリーの付帯情報を保持します。
type Meta struct {
	DetectedLanguage      string `json:"detectedLanguage"`
	EducationalConcept    string `json:"educationalConcept"`
	ContextUsed           bool   `json:"contextUsed"`
	CharacterVoiceProfile string `json:"characterVoiceProfile"`
}

// Storyboard は画面表示と読み上げに使う本文を保持します。
type Storyboard struct {
	Title               string   `json:"title"`
	DisplayText         string   `json:"displayText"`
	AudioText           string   `json:"audioText"` // 音声合成にそのまま渡すテキスト
	InteractiveQuestion string   `json:"interactiveQuestion"`
	SuggestedQuestions  []string `json:"suggestedQuestions"`
}

// Visuals は挿絵生成用のプロンプトを保持します。
type Visuals struct {
	ImagePrompt string `json:"imagePrompt"`
}

// Validate は後続の工程が依存する必須フィールドがそろっているかを検証するのだ。
// 欠けている場合はすべてのフィールド名をまとめて返すのだ。
func (s *StoryResult) Validate() error {
	if s == nil {
		return fmt.Errorf("ストーリーが nil です")
	}

	required := []struct {
		name  string
		value string
	}{
		{"meta.educationalConcept", s.Meta.EducationalConcept},
		{"storyboard.title", s.Storyboard.Title},
		{"storyboard.displayText", s.Storyboard.DisplayText},
		{"storyboard.audioText", s.Storyboard.AudioText},
		{"visuals.imagePrompt", s.Visuals.ImagePrompt},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("必須フィールドが不足しています: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Clone は呼び出し元に渡すためのディープコピーを返すのだ。
func (s *StoryResult) Clone() *StoryResult {
	if s == nil {
		return nil
	}
	c := *s
	if s.Storyboard.SuggestedQuestions != nil {
		c.Storyboard.SuggestedQuestions = make([]string, len(s.Storyboard.SuggestedQuestions))
		copy(c.Storyboard.SuggestedQuestions, s.Storyboard.SuggestedQuestions)
	}
	return &c
}

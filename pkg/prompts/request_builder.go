package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shouni/go-story-kit/pkg/domain"
	"google.golang.org/genai"
)

// NoImageInstruction は画像がないときに追加する指示なのだ。
const NoImageInstruction = "No picture was provided. Invent a lovable character that fits the question, describe how it looks, and tell the story through that character."

// ContextObject は毎回のリクエストに添付するパーソナライズと話題履歴です。
type ContextObject struct {
	ChildName     string   `json:"childName"`
	CharacterName string   `json:"characterName"`
	PrevTopics    []string `json:"prevTopics"`
}

// NewContextObject は既定値を補った ContextObject を作るのだ。
func NewContextObject(p domain.Personalization, topics []string) ContextObject {
	prev := make([]string, len(topics))
	copy(prev, topics)
	return ContextObject{
		ChildName:     p.ResolvedChildName(),
		CharacterName: strings.TrimSpace(p.CharacterName),
		PrevTopics:    prev,
	}
}

// RequestBuilder は GenerationRequest を Gemini のマルチモーダル入力に変換するのだ。
type RequestBuilder struct{}

func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{}
}

// Build は画像パートを先頭に、続けてテキストパートを並べた Content を返すのだ。
// 画像の中身は検証せず、宣言された MIME タイプとともにそのまま埋め込むのだ。
func (b *RequestBuilder) Build(req *domain.GenerationRequest) (*genai.Content, error) {
	if req == nil {
		return nil, fmt.Errorf("リクエストが nil です")
	}
	if strings.TrimSpace(req.Question) == "" {
		return nil, domain.ErrEmptyQuestion
	}

	ctxJSON, err := json.Marshal(NewContextObject(req.Personalization, req.ContextWindow))
	if err != nil {
		return nil, fmt.Errorf("コンテキストのエンコードに失敗しました: %w", err)
	}

	parts := make([]*genai.Part, 0, 2)
	if req.HasImage() {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType))
	}

	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(req.Question)
	sb.WriteString("\nContext: ")
	sb.Write(ctxJSON)
	if !req.HasImage() {
		sb.WriteString("\n")
		sb.WriteString(NoImageInstruction)
	}
	parts = append(parts, genai.NewPartFromText(sb.String()))

	return genai.NewContentFromParts(parts, genai.RoleUser), nil
}

package domain

import (
	"strings"
)

// DefaultChildName は名前が指定されなかったときの呼びかけなのだ。
const DefaultChildName = "Friend"

// ImageInput はユーザーが添付した画像と MIME タイプなのだ。
type ImageInput struct {
	Data     []byte
	MIMEType string
}

// Clone は画像バイト列を含めたコピーを返すのだ。
func (i *ImageInput) Clone() *ImageInput {
	if i == nil {
		return nil
	}
	data := make([]byte, len(i.Data))
	copy(data, i.Data)
	return &ImageInput{Data: data, MIMEType: i.MIMEType}
}

// Personalization は子どもの名前とお気に入りのキャラクター名を保持します。どちらも任意です。
type Personalization struct {
	ChildName     string
	CharacterName string
}

// ResolvedChildName は空のときに DefaultChildName を返すのだ。
func (p Personalization) ResolvedChildName() string {
	if name := strings.TrimSpace(p.ChildName); name != "" {
		return name
	}
	return DefaultChildName
}

// GenerationRequest は 1 回のストーリー生成呼び出しに必要な入力一式です。
// NewGenerationRequest で構築した後は変更しません。
type GenerationRequest struct {
	Image           *ImageInput
	Question        string
	Personalization Personalization
	ContextWindow   []string
}

// NewGenerationRequest は入力を検証し、スライスを複製したリクエストを作るのだ。
func NewGenerationRequest(image *ImageInput, question string, p Personalization, topics []string) (*GenerationRequest, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	window := make([]string, len(topics))
	copy(window, topics)

	return &GenerationRequest{
		Image:           image.Clone(),
		Question:        question,
		Personalization: p,
		ContextWindow:   window,
	}, nil
}

// HasImage は有効な画像が添付されているかを返すのだ。
func (r *GenerationRequest) HasImage() bool {
	return r.Image != nil && len(r.Image.Data) > 0
}

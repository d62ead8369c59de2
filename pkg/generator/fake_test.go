package generator

import (
	"context"
	"sync"

	"google.golang.org/genai"
)

// fakeClient は呼び出し内容を記録し、用意した応答を返す ContentGenerator なのだ。
type fakeClient struct {
	mu      sync.Mutex
	resp    *genai.GenerateContentResponse
	err     error
	model   string
	calls   int
	content []*genai.Content
	config  *genai.GenerateContentConfig
}

func (f *fakeClient) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.model = model
	f.content = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return partsResponse(genai.NewPartFromText(text))
}

func blobResponse(data []byte, mimeType string) *genai.GenerateContentResponse {
	return partsResponse(genai.NewPartFromBytes(data, mimeType))
}

func partsResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: parts}},
		},
	}
}

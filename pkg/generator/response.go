package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// withTimeout は timeout が正のときだけ期限付きのコンテキストを返すのだ。
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// firstCandidateParts は最初の候補のパートを返すのだ。候補がなければ nil なのだ。
func firstCandidateParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return nil
	}
	return c.Content.Parts
}

// collectText は思考パートを除いたテキストを連結するのだ。
func collectText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, p := range firstCandidateParts(resp) {
		if p == nil || p.Thought || p.Text == "" {
			continue
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// findInlineData は MIME タイプが prefix で始まる最初のインラインデータを探すのだ。
func findInlineData(resp *genai.GenerateContentResponse, prefix string) *genai.Blob {
	for _, p := range firstCandidateParts(resp) {
		if p == nil || p.InlineData == nil || len(p.InlineData.Data) == 0 {
			continue
		}
		if prefix == "" || strings.HasPrefix(strings.ToLower(p.InlineData.MIMEType), prefix) {
			return p.InlineData
		}
	}
	return nil
}

// findUntypedInlineData は MIME タイプが付いていない最初のインラインデータを探すのだ。
func findUntypedInlineData(resp *genai.GenerateContentResponse) *genai.Blob {
	for _, p := range firstCandidateParts(resp) {
		if p == nil || p.InlineData == nil || len(p.InlineData.Data) == 0 {
			continue
		}
		if strings.TrimSpace(p.InlineData.MIMEType) == "" {
			return p.InlineData
		}
	}
	return nil
}

// logAPIError は Gemini API のエラーであればステータスをログに残すのだ。
func logAPIError(ctx context.Context, call string, err error) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		slog.WarnContext(ctx, "Gemini API がエラーを返しました",
			"call", call,
			"code", apiErr.Code,
			"status", apiErr.Status,
			"message", apiErr.Message,
		)
		return
	}
	slog.DebugContext(ctx, "Gemini 呼び出しに失敗しました", "call", call, "error", err)
}

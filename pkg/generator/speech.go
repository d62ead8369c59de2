package generator

import (
	"context"
	"fmt"
	"mime"
	"strconv"
	"strings"
	"time"

	"github.com/shouni/go-story-kit/pkg/audio"
	"github.com/shouni/go-story-kit/pkg/domain"
	"google.golang.org/genai"
)

// GeminiSpeechSynthesizer は Gemini TTS で PCM を受け取り、WAV に変換して返します。
type GeminiSpeechSynthesizer struct {
	client  ContentGenerator
	model   string
	voice   string
	timeout time.Duration
}

func NewGeminiSpeechSynthesizer(client ContentGenerator, model, voice string, timeout time.Duration) *GeminiSpeechSynthesizer {
	return &GeminiSpeechSynthesizer{
		client:  client,
		model:   model,
		voice:   voice,
		timeout: timeout,
	}
}

// Synthesize は読み上げテキストを音声合成し、WAV コンテナに包んだ Media を返すのだ。
// 失敗は domain.MediaError で返し、奇数長の PCM は EncodingError を含むのだ。
func (s *GeminiSpeechSynthesizer) Synthesize(ctx context.Context, text string) (*Media, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &domain.MediaError{Kind: domain.MediaAudio, Err: fmt.Errorf("読み上げテキストが空です")}
	}

	cfg := &genai.GenerateContentConfig{
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: s.voice},
			},
		},
	}
	cfg.ResponseModalities = append(cfg.ResponseModalities, "AUDIO")

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.GenerateContent(callCtx, s.model, genai.Text(text), cfg)
	if err != nil {
		logAPIError(ctx, "tts", err)
		return nil, &domain.MediaError{Kind: domain.MediaAudio, Err: err}
	}

	blob := findInlineData(resp, "audio/")
	if blob == nil {
		blob = findUntypedInlineData(resp)
	}
	if blob == nil {
		return nil, &domain.MediaError{Kind: domain.MediaAudio, Err: domain.ErrNoMediaInResult}
	}

	wav, err := audio.EncodeWAV(blob.Data, sampleRateFromMIME(blob.MIMEType))
	if err != nil {
		return nil, domain.NewAudioEncodingFailure(err)
	}
	return &Media{Data: wav, MIMEType: audio.WAVMimeType}, nil
}

// sampleRateFromMIME は "audio/L16;codec=pcm;rate=24000" の rate を読むのだ。読めなければ既定値なのだ。
func sampleRateFromMIME(mimeType string) int {
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return audio.DefaultSampleRate
	}
	rate, err := strconv.Atoi(params["rate"])
	if err != nil || rate <= 0 {
		return audio.DefaultSampleRate
	}
	return rate
}

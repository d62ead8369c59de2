package audio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// 音声合成 API が返す PCM の既定フォーマットなのだ。
const (
	DefaultSampleRate = 24000
	Channels          = 1
	BitsPerSample     = 16
	HeaderSize        = 44
	WAVMimeType       = "audio/wav"
)

var (
	// ErrOddLength は 16bit サンプルとして割り切れない PCM が渡されたことを示すのだ。
	ErrOddLength = errors.New("PCM のバイト長が奇数です")
	// ErrEmptyPCM は PCM データが空であることを示すのだ。
	ErrEmptyPCM = errors.New("PCM データが空です")
	// ErrInvalidSampleRate はサンプルレートが正でないことを示すのだ。
	ErrInvalidSampleRate = errors.New("サンプルレートが不正です")
)

// EncodeWAV はリトルエンディアン 16bit モノラル PCM に 44 バイトの RIFF/WAVE ヘッダーを付けて返すのだ。
// サンプルは一切加工せず、ヘッダーの直後にそのまま並べるのだ。
func EncodeWAV(pcm []byte, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrOddLength, len(pcm))
	}

	dataSize := uint32(len(pcm))
	blockAlign := uint16(Channels * BitsPerSample / 8)
	byteRate := uint32(sampleRate) * uint32(blockAlign)

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+len(pcm)))

	// RIFF チャンク
	buf.WriteString("RIFF")
	writeLE(buf, uint32(36)+dataSize)
	buf.WriteString("WAVE")

	// fmt チャンク
	buf.WriteString("fmt ")
	writeLE(buf, uint32(16))
	writeLE(buf, uint16(1)) // linear PCM
	writeLE(buf, uint16(Channels))
	writeLE(buf, uint32(sampleRate))
	writeLE(buf, byteRate)
	writeLE(buf, blockAlign)
	writeLE(buf, uint16(BitsPerSample))

	// data チャンク
	buf.WriteString("data")
	writeLE(buf, dataSize)
	buf.Write(pcm)

	return buf.Bytes(), nil
}

// writeLE は bytes.Buffer への書き込みなので失敗しないのだ。
func writeLE(buf *bytes.Buffer, v any) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}

// DecodeBase64PCM は base64 テキストとして受け取った PCM をバイト列に戻すのだ。
func DecodeBase64PCM(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrEmptyPCM
	}
	pcm, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("PCM の base64 デコードに失敗しました: %w", err)
	}
	if len(pcm) == 0 {
		return nil, ErrEmptyPCM
	}
	return pcm, nil
}

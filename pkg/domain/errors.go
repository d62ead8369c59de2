package domain

import (
	"errors"
	"fmt"
)

// UserFacingMessage はストーリー生成に失敗したときに画面へ出す唯一のメッセージなのだ。
// 内部のエラー内容はここには含めず、ログにだけ残すのだ。
const UserFacingMessage = "Oops! The story magic fizzled out. Please try again."

var (
	ErrEmptyQuestion   = errors.New("質問が空です")
	ErrTurnInProgress  = errors.New("別のストーリーを生成中です")
	ErrNoRetainedTurn  = errors.New("フォローアップ対象の直前のターンがありません")
	ErrEmptyResponse   = errors.New("モデルの応答が空です")
	ErrNoMediaInResult = errors.New("応答にメディアデータが含まれていません")
)

// RequestError はストーリー本文の生成に失敗したことを表します。ターン全体が失敗になります。
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("ストーリー生成に失敗しました: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// MediaError は音声または挿絵の生成失敗です。ターンは失敗させずに記録だけします。
type MediaError struct {
	Kind MediaKind
	Err  error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("%s の生成に失敗しました: %v", e.Kind, e.Err)
}

func (e *MediaError) Unwrap() error { return e.Err }

// EncodingError は PCM から音声コンテナへの変換失敗なのだ。
// 呼び出し側では音声の MediaError として扱うのだ。
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("音声のエンコードに失敗しました: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// NewAudioEncodingFailure は EncodingError を音声の MediaError に包んで返すのだ。
func NewAudioEncodingFailure(err error) *MediaError {
	return &MediaError{Kind: MediaAudio, Err: &EncodingError{Err: err}}
}

// ErrTurnSuperseded は完了したターンが Reset や新しい送信によって無効になっていたことを示すのだ。
// 結果は状態に反映されていないのだ。
var ErrTurnSuperseded = errors.New("ターンはすでに破棄されています")

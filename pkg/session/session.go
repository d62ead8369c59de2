package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shouni/go-story-kit/pkg/domain"
)

// TurnState は直前のトップレベル送信で使った入力です。
// フォローアップ質問ではこの画像とパーソナライズをそのまま再利用します。
type TurnState struct {
	Image           *domain.ImageInput
	Question        string
	Personalization domain.Personalization
}

// Session は 1 ユーザー分のセッション状態（話題履歴と直前のターン入力）を保持するのだ。
// グローバル変数にせず、オーケストレーターが所有するのだ。
type Session struct {
	ID      string
	Context *ContextWindow

	mu   sync.RWMutex
	turn *TurnState
}

// New は空のセッションを作るのだ。
func New(capacity int) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Context: NewContextWindow(capacity),
	}
}

// Retain はトップレベル送信の入力を保存するのだ。以前の内容は置き換えるのだ。
func (s *Session) Retain(t TurnState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Image = t.Image.Clone()
	s.turn = &t
}

// Retained は保存済みのターン入力を返すのだ。なければ ok が false なのだ。
func (s *Session) Retained() (TurnState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.turn == nil {
		return TurnState{}, false
	}
	t := *s.turn
	t.Image = t.Image.Clone()
	return t, true
}

// Clear は話題履歴と保存済みの入力をすべて破棄するのだ。
func (s *Session) Clear() {
	s.mu.Lock()
	s.turn = nil
	s.mu.Unlock()
	s.Context.Clear()
}

package session

import "sync"

// DefaultContextCapacity は保持する話題の最大数なのだ。
const DefaultContextCapacity = 3

// ContextWindow は直近の話題ラベルを古い順に保持する固定長の FIFO です。
// 容量を超えて追加すると、最も古いものから捨てます。
type ContextWindow struct {
	mu       sync.RWMutex
	capacity int
	topics   []string
}

// NewContextWindow は指定容量の ContextWindow を作るのだ。0 以下なら既定値を使うのだ。
func NewContextWindow(capacity int) *ContextWindow {
	if capacity <= 0 {
		capacity = DefaultContextCapacity
	}
	return &ContextWindow{
		capacity: capacity,
		topics:   make([]string, 0, capacity),
	}
}

// Append は話題を末尾に追加し、容量を超えた分を先頭から捨てるのだ。
func (w *ContextWindow) Append(topic string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.topics = append(w.topics, topic)
	if over := len(w.topics) - w.capacity; over > 0 {
		w.topics = append(w.topics[:0:0], w.topics[over:]...)
	}
}

// Snapshot は現在の話題を古い順に並べたコピーを返すのだ。
func (w *ContextWindow) Snapshot() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]string, len(w.topics))
	copy(out, w.topics)
	return out
}

func (w *ContextWindow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.topics)
}

func (w *ContextWindow) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.topics = w.topics[:0]
}

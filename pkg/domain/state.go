package domain

// State はオーケストレーターの状態遷移を表すのだ。
type State int

const (
	StateIdle State = iota
	StateAnalyzing
	StateGeneratingMedia
	StatePlaying
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnalyzing:
		return "analyzing"
	case StateGeneratingMedia:
		return "generating_media"
	case StatePlaying:
		return "playing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// IsBusy はターンが進行中かどうかを返すのだ。
func (s State) IsBusy() bool {
	return s == StateAnalyzing || s == StateGeneratingMedia
}

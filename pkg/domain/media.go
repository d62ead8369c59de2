package domain

// MediaKind は生成されるメディアの種類なのだ。
type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaImage MediaKind = "image"
)

// MediaBundle は音声と挿絵へのハンドルです。
// 片方だけが欠けていても、バンドル全体としてはエラーではありません。
type MediaBundle struct {
	AudioURL string `json:"audioUrl,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func (b MediaBundle) HasAudio() bool { return b.AudioURL != "" }
func (b MediaBundle) HasImage() bool { return b.ImageURL != "" }

// IsEmpty は音声も挿絵も得られなかったかを返すのだ。
func (b MediaBundle) IsEmpty() bool {
	return !b.HasAudio() && !b.HasImage()
}

package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shouni/go-story-kit/pkg/domain"
	"github.com/shouni/go-story-kit/pkg/workflow"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F780FF"))
	bodyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#E9E9F4")).PaddingLeft(2)
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6272A4")).Padding(0, 1)
)

// viewJSON は --json 出力の形なのだ。
type viewJSON struct {
	SessionID    string              `json:"sessionId"`
	State        string              `json:"state"`
	Turn         uint64              `json:"turn"`
	Story        *domain.StoryResult `json:"story,omitempty"`
	AudioURL     string              `json:"audioUrl,omitempty"`
	ImageURL     string              `json:"imageUrl,omitempty"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
	Topics       []string            `json:"topics"`
}

// Renderer は View を端末向けの装飾テキストか JSON で書き出すのだ。
type Renderer struct {
	out    io.Writer
	asJSON bool
}

func NewRenderer(out io.Writer, asJSON bool) *Renderer {
	return &Renderer{out: out, asJSON: asJSON}
}

// Render は 1 ターン分の結果を書き出します。
func (r *Renderer) Render(view workflow.View) error {
	if r.asJSON {
		return r.renderJSON(view)
	}
	_, err := fmt.Fprintln(r.out, r.format(view))
	return err
}

func (r *Renderer) renderJSON(view workflow.View) error {
	topics := view.Topics
	if topics == nil {
		topics = []string{}
	}
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(viewJSON{
		SessionID:    view.SessionID,
		State:        view.State.String(),
		Turn:         view.Turn,
		Story:        view.Story,
		AudioURL:     view.Media.AudioURL,
		ImageURL:     view.Media.ImageURL,
		ErrorMessage: view.ErrorMessage,
		Topics:       topics,
	})
}

func (r *Renderer) format(view workflow.View) string {
	if view.State == domain.StateError {
		return errorStyle.Render(view.ErrorMessage)
	}
	if view.Story == nil {
		return mutedStyle.Render(fmt.Sprintf("[%s]", view.State))
	}

	sb := view.Story.Storyboard
	var b strings.Builder
	b.WriteString(titleStyle.Render(sb.Title))
	b.WriteString("\n\n")
	b.WriteString(bodyStyle.Render(sb.DisplayText))
	b.WriteString("\n")

	if sb.InteractiveQuestion != "" {
		b.WriteString("\n")
		b.WriteString(questionStyle.Render(sb.InteractiveQuestion))
		b.WriteString("\n")
	}
	for i, q := range sb.SuggestedQuestions {
		b.WriteString(questionStyle.Render(fmt.Sprintf("  %d) %s", i+1, q)))
		b.WriteString("\n")
	}

	var media []string
	media = append(media, "audio: "+handleOrMissing(view.Media.AudioURL))
	media = append(media, "image: "+handleOrMissing(view.Media.ImageURL))
	media = append(media, "topics: "+strings.Join(view.Topics, ", "))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(mutedStyle.Render(strings.Join(media, "\n"))))
	return b.String()
}

// data: URL は長すぎるので端末には先頭だけ出すのだ。
func handleOrMissing(handle string) string {
	switch {
	case handle == "":
		return "(none)"
	case strings.HasPrefix(handle, "data:") && len(handle) > 48:
		return handle[:48] + "..."
	default:
		return handle
	}
}

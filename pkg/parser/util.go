package parser

import (
	"strings"
	"unicode/utf8"
)

// StripFences はモデル応答からコードフェンスを取り除き、JSON 本文だけを返すのだ。
// フェンスがなければ最も外側の { } を探し、それもなければ全体をそのまま返すのだ。
func StripFences(raw string) string {
	return bodyCandidates(raw)[0]
}

// bodyCandidates は JSON 本文の候補を優先順に返すのだ。
// フェンスの中身、最も外側の { }、応答全体の順で、重複は除くのだ。
func bodyCandidates(raw string) []string {
	raw = strings.TrimSpace(raw)

	var candidates []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		for _, c := range candidates {
			if c == s {
				return
			}
		}
		candidates = append(candidates, s)
	}

	if matches := jsonBlockRegex.FindStringSubmatch(raw); len(matches) > 1 {
		add(matches[1])
	}

	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first != -1 && last > first {
		add(raw[first : last+1])
	}

	add(raw)
	if len(candidates) == 0 {
		candidates = append(candidates, raw)
	}
	return candidates
}

// truncateString は maxLen バイト以内でルーンの境界に合わせて切り詰めるのだ。
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

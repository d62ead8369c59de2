package parser

import "regexp"

var (
	// jsonBlockRegex は最初のコードフェンスの本文をキャプチャします。
	// 言語タグは大小文字を問わず任意で、タグなしの ``` にも対応します。
	jsonBlockRegex = regexp.MustCompile("(?is)```[a-z0-9_+-]*[ \\t]*\\r?\\n?(.*?)\\s*```")
)

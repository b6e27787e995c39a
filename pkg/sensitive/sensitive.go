package sensitive

import (
	"strings"

	"github.com/importcjj/sensitive"
)

type Word struct {
	Filter *sensitive.Filter
}

// NewWord dictPath 为空时只使用 words；词库文件每行一个词
func NewWord(dictPath string, words []string) (*Word, error) {
	filter := sensitive.New()

	if dictPath != "" {
		if err := filter.LoadWordDict(dictPath); err != nil {
			return nil, err
		}
	}

	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			filter.AddWord(w)
		}
	}

	return &Word{
		Filter: filter,
	}, nil
}

// Validate 通过时返回 true，否则返回命中的第一个词
func (w *Word) Validate(content string) (bool, string) {
	return w.Filter.Validate(content)
}

func (w *Word) Replace(content string, replChar rune) string {
	return w.Filter.Replace(content, replChar)
}

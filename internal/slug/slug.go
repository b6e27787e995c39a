// Package slug 由标题生成 URL 安全、全局唯一的 slug
package slug

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptySlug 标题中没有任何字母或数字
var ErrEmptySlug = errors.New("slug: title has no letters or digits")

// Checker 判断 slug 是否已被占用
type Checker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// CheckerFunc 适配普通函数
type CheckerFunc func(ctx context.Context, slug string) (bool, error)

func (f CheckerFunc) SlugExists(ctx context.Context, slug string) (bool, error) {
	return f(ctx, slug)
}

// Slugify "Héllo, World!" -> "hello-world"
// 去掉变音符号后只保留 ASCII 字母数字，其余连续字符折叠成一个连字符
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}

// Generator 线性探测: base, base-1, base-2 ...
type Generator struct {
	checker Checker
}

func NewGenerator(c Checker) *Generator {
	return &Generator{checker: c}
}

// Generate 返回调用时刻库中不存在的 slug，不负责持久化
func (g *Generator) Generate(ctx context.Context, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		return "", ErrEmptySlug
	}

	candidate := base
	for n := 1; ; n++ {
		exists, err := g.checker.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

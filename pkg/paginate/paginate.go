package paginate

import (
	"net/url"
	"strconv"
)

const (
	onEachSide = 3
	window     = onEachSide + 4

	PrevLabel = "&laquo; Previous"
	NextLabel = "Next &raquo;"
	Dots      = "..."
)

// Link 分页导航项，URL 为 nil 表示不可点击
type Link struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// Page 一页数据加导航链接
type Page[T any] struct {
	Data        []T    `json:"data"`
	CurrentPage int    `json:"current_page"`
	LastPage    int    `json:"last_page"`
	PerPage     int    `json:"per_page"`
	Total       int64  `json:"total"`
	From        int    `json:"from"`
	To          int    `json:"to"`
	Links       []Link `json:"links"`
}

// Request 分页参数；Query 会原样带到链接上（page 除外）
type Request struct {
	Page    int
	PerPage int
	Path    string
	Query   url.Values
}

// NewRequest page 非法时回到第一页
func NewRequest(page, perPage int, path string, query url.Values) Request {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 15
	}
	return Request{Page: page, PerPage: perPage, Path: path, Query: query}
}

// ParsePage 解析 ?page=
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (r Request) Offset() int {
	return (r.Page - 1) * r.PerPage
}

// URL 第 page 页的地址
func (r Request) URL(page int) string {
	q := url.Values{}
	for k, v := range r.Query {
		q[k] = append([]string(nil), v...)
	}
	q.Set("page", strconv.Itoa(page))
	return r.Path + "?" + q.Encode()
}

// New 组装分页结果，data 为 nil 时输出空数组
func New[T any](r Request, total int64, data []T) Page[T] {
	if data == nil {
		data = []T{}
	}
	last := int((total + int64(r.PerPage) - 1) / int64(r.PerPage))
	if last < 1 {
		last = 1
	}
	p := Page[T]{
		Data:        data,
		CurrentPage: r.Page,
		LastPage:    last,
		PerPage:     r.PerPage,
		Total:       total,
	}
	if len(data) > 0 {
		p.From = r.Offset() + 1
		p.To = r.Offset() + len(data)
	}
	p.Links = links(r, last)
	return p
}

func links(r Request, last int) []Link {
	var out []Link

	prev := Link{Label: PrevLabel}
	if r.Page > 1 {
		prev.URL = ptr(r.URL(r.Page - 1))
	}
	out = append(out, prev)

	for _, n := range Window(r.Page, last) {
		if n == 0 {
			out = append(out, Link{Label: Dots})
			continue
		}
		out = append(out, Link{URL: ptr(r.URL(n)), Label: strconv.Itoa(n), Active: n == r.Page})
	}

	next := Link{Label: NextLabel}
	if r.Page < last {
		next.URL = ptr(r.URL(r.Page + 1))
	}
	return append(out, next)
}

// Window 需要展示的页码，0 代表省略号
func Window(current, last int) []int {
	if last < onEachSide*2+8 {
		return pageRange(1, last)
	}

	var out []int
	switch {
	case current <= window:
		out = append(out, pageRange(1, window+onEachSide)...)
		out = append(out, 0)
		out = append(out, last-1, last)
	case current > last-window:
		out = append(out, 1, 2, 0)
		out = append(out, pageRange(last-(window+onEachSide-1), last)...)
	default:
		out = append(out, 1, 2, 0)
		out = append(out, pageRange(current-onEachSide, current+onEachSide)...)
		out = append(out, 0, last-1, last)
	}
	return out
}

func pageRange(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func ptr(s string) *string {
	return &s
}

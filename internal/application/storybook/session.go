package storybook

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrBookNotFound 书库中没有该绘本
var ErrBookNotFound = errors.New("book not found")

// SortBy 书库排序方式
type SortBy string

const (
	// SortRecent 最新创建的在前
	SortRecent SortBy = "recent"
	// SortAlpha 按标题韩文排序
	SortAlpha SortBy = "alpha"
)

// Spread 阅读器当前展开的左右两页
// Right 为空表示已到最后一页
type Spread struct {
	Left  Page
	Right *Page
	Index int
	Total int
}

// Session 书库与阅读进度，所有状态显式持有
type Session struct {
	mu      sync.RWMutex
	books   []Book
	current int
	page    int
	now     func() time.Time
}

func NewSession() *Session {
	return &Session{current: -1, now: time.Now}
}

// AddBook 加入书库，缺失的 ID 与创建时间自动补全
func (s *Session) AddBook(b Book) Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	s.books = append(s.books, b)
	return b
}

// Books 按加入顺序返回副本
func (s *Session) Books() []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Book(nil), s.books...)
}

// Open 打开绘本并回到第一页
func (s *Session) Open(id string) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.books {
		if b.ID == id {
			s.current = i
			s.page = 0
			return b, nil
		}
	}
	return Book{}, ErrBookNotFound
}

// Next 翻到下一页，已在最后一页时不动
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 || s.page >= len(s.books[s.current].Pages)-1 {
		return false
	}
	s.page++
	return true
}

// Prev 翻到上一页，已在第一页时不动
func (s *Session) Prev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 || s.page == 0 {
		return false
	}
	s.page--
	return true
}

// Current 当前展开页，未打开绘本或绘本为空时 ok 为 false
func (s *Session) Current() (Spread, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current < 0 {
		return Spread{}, false
	}
	pages := s.books[s.current].Pages
	if s.page >= len(pages) {
		return Spread{}, false
	}

	sp := Spread{Left: pages[s.page], Index: s.page, Total: len(pages)}
	if s.page+1 < len(pages) {
		right := pages[s.page+1]
		sp.Right = &right
	}
	return sp, true
}

// Sorted 返回排序后的副本，不影响阅读进度
func (s *Session) Sorted(by SortBy) []Book {
	books := s.Books()

	switch by {
	case SortAlpha:
		c := collate.New(language.Korean)
		sort.SliceStable(books, func(i, j int) bool {
			return c.CompareString(books[i].Title, books[j].Title) < 0
		})
	default:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].CreatedAt.After(books[j].CreatedAt)
		})
	}
	return books
}

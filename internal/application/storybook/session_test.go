package storybook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	s := NewSession()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return s
}

func TestSessionReaderNavigation(t *testing.T) {
	s := newTestSession()
	b := s.AddBook(Book{Title: "숲", Pages: []Page{{Text: "1"}, {Text: "2"}, {Text: "3"}}})
	require.NotEmpty(t, b.ID)

	_, ok := s.Current()
	assert.False(t, ok)
	assert.False(t, s.Next())

	_, err := s.Open(b.ID)
	require.NoError(t, err)

	sp, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "1", sp.Left.Text)
	require.NotNil(t, sp.Right)
	assert.Equal(t, "2", sp.Right.Text)
	assert.Equal(t, 3, sp.Total)

	assert.False(t, s.Prev())
	assert.True(t, s.Next())
	assert.True(t, s.Next())
	assert.False(t, s.Next())

	sp, _ = s.Current()
	assert.Equal(t, 2, sp.Index)
	assert.Nil(t, sp.Right)

	assert.True(t, s.Prev())
	sp, _ = s.Current()
	assert.Equal(t, "2", sp.Left.Text)
}

func TestSessionOpenUnknown(t *testing.T) {
	_, err := newTestSession().Open("missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestSessionOpenResetsPage(t *testing.T) {
	s := newTestSession()
	a := s.AddBook(Book{Title: "a", Pages: []Page{{Text: "1"}, {Text: "2"}}})
	_, _ = s.Open(a.ID)
	s.Next()

	_, _ = s.Open(a.ID)
	sp, _ := s.Current()
	assert.Equal(t, 0, sp.Index)
}

func TestSessionSorted(t *testing.T) {
	s := newTestSession()
	s.AddBook(Book{Title: "하늘"})
	s.AddBook(Book{Title: "가방"})
	s.AddBook(Book{Title: "나무"})

	titles := func(bs []Book) []string {
		out := make([]string, len(bs))
		for i, b := range bs {
			out[i] = b.Title
		}
		return out
	}

	assert.Equal(t, []string{"나무", "가방", "하늘"}, titles(s.Sorted(SortRecent)))
	assert.Equal(t, []string{"가방", "나무", "하늘"}, titles(s.Sorted(SortAlpha)))
	assert.Equal(t, []string{"하늘", "가방", "나무"}, titles(s.Books()))
}

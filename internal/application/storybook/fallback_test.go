package storybook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackGenerate(t *testing.T) {
	g := NewFallbackGenerator()
	require.Equal(t, 5, g.Size())

	pages := g.Generate("지우", "우정", 3)
	require.Len(t, pages, 3)
	assert.Equal(t, "지우는 마법의 숲에서 특별한 모험을 시작했어요.", pages[0].Text)
	assert.Equal(t, "🌲✨", pages[0].Illustration)
	assert.Equal(t, "우정에 대한 이야기가. 펼쳐지기 시작했답니다.", pages[1].Text)
}

func TestFallbackGenerateBounds(t *testing.T) {
	g := NewFallbackGenerator()

	assert.Len(t, g.Generate("a", "b", 12), 5)
	assert.Empty(t, g.Generate("a", "b", 0))
	assert.Empty(t, g.Generate("a", "b", -3))
	assert.Equal(t, g.Generate("a", "b", 5), g.Generate("a", "b", 5))
}

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte("pages:\n  - text: \"{child} hi\"\n    illustration: x\n"))
	require.NoError(t, err)

	pages := NewFallbackGeneratorWithCatalog(c).Generate("Mia", "", 2)
	assert.Equal(t, []Page{{Text: "Mia hi", Illustration: "x"}}, pages)

	_, err = ParseCatalog([]byte("pages: []"))
	assert.Error(t, err)
	_, err = ParseCatalog([]byte(":::"))
	assert.Error(t, err)
}

package storybook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitParagraphs(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, SplitParagraphs("A\n\nB\n\nC"))
	assert.Equal(t, []string{"A\nstill A", "B"}, SplitParagraphs("  A\nstill A\n \t\n\n\nB\n"))
	assert.Nil(t, SplitParagraphs("   \n\n  "))
}

func TestComposePages(t *testing.T) {
	pages := ComposePages([]string{"one", "two", "three"}, []Image{{FilePath: "/img/1.png"}, {FilePath: " "}})

	assert.Equal(t, []Page{
		{Text: "one", Illustration: "/img/1.png"},
		{Text: "two", Illustration: PlaceholderIllustration},
		{Text: "three", Illustration: PlaceholderIllustration},
	}, pages)
}

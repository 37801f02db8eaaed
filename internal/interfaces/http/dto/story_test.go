package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-api/internal/application/story"
)

func TestParseMakeStoryRequestDefaults(t *testing.T) {
	for _, body := range []string{"", "  ", "{}", `{"title":null}`} {
		req, err := ParseMakeStoryRequest([]byte(body))
		require.NoError(t, err, body)

		got := req.ToStoryRequest()
		assert.Equal(t, story.StoryRequest{Age: "6-8세", Style: "따뜻한", Length: 5, Moral: true}, got)
	}
}

func TestParseMakeStoryRequestExplicitValuesWin(t *testing.T) {
	req, err := ParseMakeStoryRequest([]byte(`{"title":"T","outline":"O","age":"","style":"","length":0,"moral":false}`))
	require.NoError(t, err)

	assert.Equal(t, story.StoryRequest{Title: "T", Outline: "O", Length: 0, Moral: false}, req.ToStoryRequest())
}

func TestFlexIntLength(t *testing.T) {
	cases := map[string]int{
		`{"length":7}`:     7,
		`{"length":"3"}`:   3,
		`{"length":" 4 "}`: 4,
		`{"length":6.0}`:   6,
	}
	for body, want := range cases {
		req, err := ParseMakeStoryRequest([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, want, req.ToStoryRequest().Length, body)
	}

	for _, body := range []string{`{"length":"five"}`, `{"length":2.5}`, `{"length":true}`} {
		_, err := ParseMakeStoryRequest([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestParseMakeStoryRequestMalformed(t *testing.T) {
	_, err := ParseMakeStoryRequest([]byte(`{"title":`))
	assert.Error(t, err)

	_, err = ParseMakeStoryRequest([]byte(`{"title":123}`))
	assert.Error(t, err)
}

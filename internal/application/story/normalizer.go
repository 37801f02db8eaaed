package story

import (
	"strings"

	apperrors "storybook-api/pkg/errors"
)

// Normalize 去除首尾空白，结果为空视为 empty_story
func Normalize(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", apperrors.New(apperrors.CodeEmptyStory, "provider returned no story text")
	}
	return text, nil
}

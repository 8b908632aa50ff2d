package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "intro-to-go", Slugify("Intro to Go!"))
	assert.Equal(t, "hello-world", Slugify("  Hello,   World  "))
	assert.Equal(t, "lecture-12", Slugify("Lecture #12"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestDedupSlugKeepsBaseAndDiffers(t *testing.T) {
	a := DedupSlug("intro")
	b := DedupSlug("intro")

	assert.True(t, strings.HasPrefix(a, "intro-"))
	assert.True(t, strings.HasPrefix(b, "intro-"))
	assert.NotEqual(t, a, b)
}

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Senior Go Engineer", CleanText("  Senior \n Go\tEngineer  "))
	assert.Equal(t, "a b", CleanText("a b"))
	assert.Equal(t, "", CleanText("   "))
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "Berlin, Germany", NormalizeLocation("Location: Berlin ,  Germany"))
	assert.Equal(t, "Berlin", NormalizeLocation("Berlin, berlin"))
	assert.Equal(t, "", NormalizeLocation("  "))
}

func TestIsRemoteText(t *testing.T) {
	assert.True(t, IsRemoteText("Remote - EMEA"))
	assert.True(t, IsRemoteText("", "Work From Home friendly"))
	assert.True(t, IsRemoteText("Anywhere"))
	assert.False(t, IsRemoteText("Berlin, Germany", "Backend Engineer"))
}

func TestMatchesAnyKeyword(t *testing.T) {
	assert.True(t, MatchesAnyKeyword(nil, "anything at all"))
	assert.True(t, MatchesAnyKeyword([]string{"go"}, "Senior Go Engineer"))
	assert.True(t, MatchesAnyKeyword([]string{"rust", "python"}, "We use Python", "daily"))
	assert.False(t, MatchesAnyKeyword([]string{"rust"}, "Senior Go Engineer"))
	assert.False(t, MatchesAnyKeyword([]string{"  "}, "blank keywords never match"))
}

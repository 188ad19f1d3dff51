package utils_test

import (
	"eduhub/utils"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Intro to Go":             "intro-to-go",
		"  C++ & Rust: Basics!! ": "c-rust-basics",
		"---":                     "item",
		"":                        "item",
		"Ünïcode Title":           "n-code-title",
	}
	for in, want := range tests {
		assert.Equal(t, want, utils.Slugify(in), in)
	}

	long := utils.Slugify(strings.Repeat("a", 50) + " " + strings.Repeat("b", 50))
	assert.LessOrEqual(t, len(long), 80)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestUniqueSlug(t *testing.T) {
	a, b := utils.UniqueSlug("Intro to Go"), utils.UniqueSlug("Intro to Go")
	assert.True(t, strings.HasPrefix(a, "intro-to-go-"))
	assert.NotEqual(t, a, b)
}

func TestGenerateCertificateNumber(t *testing.T) {
	at := time.Date(2026, 1, 16, 23, 0, 0, 0, time.UTC)
	number := utils.GenerateCertificateNumber(at)
	assert.Regexp(t, regexp.MustCompile(`^EDU-20260116-[0-9a-f]{8}$`), number)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "19.99 USD", utils.FormatAmount(1999, "usd"))
	assert.Equal(t, "0.05 EUR", utils.FormatAmount(5, "eur"))
	assert.Equal(t, "-10.00 USD", utils.FormatAmount(-1000, "usd"))
}

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := utils.GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9]{6}$`, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

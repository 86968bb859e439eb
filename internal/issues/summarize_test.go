package issues

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_OfficeAction(t *testing.T) {
	text := `Office Action Summary - Non-Final
mail date: 2024/01/15
Claims 1-3 are rejected under 35 U.S.C. 103 as being unpatentable over US 9,876,543.
Claim 5 is rejected under 35 U.S.C. 112(b) as indefinite.`

	got := Summarize(text, 0)
	require.Len(t, got, 5)
	assert.Equal(t, "Claims 1-3 are rejected under 35 U", got[0])
	assert.Equal(t, "Claim 5 is rejected under 35 U", got[1])
	assert.Equal(t, "Possible statutory grounds mentioned: 103, 112.", got[2])
	assert.Equal(t, "35 U.S.C. 103 as being unpatentable over US 9,876,543", got[3])
	assert.Equal(t, "Cited references detected (partial): US 9,876,543", got[4])
}

func TestSummarize_GroundsAreWholeWords(t *testing.T) {
	got := Summarize("see paragraph 1020 and section 102", 0)
	assert.Equal(t, []string{"Possible statutory grounds mentioned: 102."}, got)
}

func TestSummarize_GroundsFixedOrder(t *testing.T) {
	got := Summarize("rejections under 112 then 102 then 103", 0)
	assert.Equal(t, []string{"Possible statutory grounds mentioned: 102, 103, 112."}, got)
}

func TestSummarize_References(t *testing.T) {
	text := "Cited: US 8,123,456; US8123456; 7,654,321; 7,654,321; 6,000,001."
	got := Summarize(text, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "Cited references detected (partial): US 8,123,456, US8123456, 7,654,321…", got[0])
}

func TestSummarize_Fallbacks(t *testing.T) {
	assert.Equal(t, []string{NoTextBullet}, Summarize("", 0))
	assert.Equal(t, []string{NoTextBullet}, Summarize(" \n\t", 0))
	assert.Equal(t, []string{NeedsReview}, Summarize("A friendly letter with nothing to flag.", 0))
	assert.NotEqual(t, NoTextBullet, NeedsReview)
}

func TestSummarize_MaxItems(t *testing.T) {
	text := "Claims 1 are rejected. Claims 2 are rejected. 102 103. 35 USC 101 text."
	assert.Len(t, Summarize(text, 2), 2)
	assert.Len(t, Summarize(text, 0), 4)
}

func TestClean(t *testing.T) {
	assert.Equal(t, "a b c", Clean("  a \n b\t\tc  "))

	long := strings.Repeat("x", 300)
	got := Clean(long)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxBulletLen)

	cjk := strings.Repeat("審", 200)
	got = Clean(cjk)
	assert.Equal(t, 178, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))

	exact := strings.Repeat("y", MaxBulletLen)
	assert.Equal(t, exact, Clean(exact))
}

package dates

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JulianCode-PC/oa-docket/internal/entity"
)

func TestFindFirst_Grammars(t *testing.T) {
	tests := []struct {
		name string
		text string
		want entity.Date
	}{
		{"ymd slash", "issued 2024/01/15 by the office", entity.MustDate(2024, time.January, 15)},
		{"ymd dot", "issued 1999.12.31", entity.MustDate(1999, time.December, 31)},
		{"ymd dash", "issued 2023-2-3", entity.MustDate(2023, time.February, 3)},
		{"mdy", "Mailed 3/7/2024", entity.MustDate(2024, time.March, 7)},
		{"month name", "MARCH 5, 2024", entity.MustDate(2024, time.March, 5)},
		{"abbreviated month", "on Sept. 9, 2021", entity.MustDate(2021, time.September, 9)},
		{"full month lower", "on december 1,2020", entity.MustDate(2020, time.December, 1)},
		{"iso outside ymd years", "archived 2150-06-01", entity.MustDate(2150, time.June, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := FindFirst(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, m.Date)
		})
	}
}

func TestFindFirst_EarliestPositionWins(t *testing.T) {
	// month-name grammar is listed after ymd but appears first in the text
	m, ok := FindFirst("Received January 2, 2024; see also 2024/05/06")
	require.True(t, ok)
	assert.Equal(t, entity.MustDate(2024, time.January, 2), m.Date)
	assert.Equal(t, "month_name", m.Grammar)
	assert.Equal(t, 9, m.Offset)
}

func TestFindFirst_ImpossibleDatesSkipped(t *testing.T) {
	m, ok := FindFirst("ref 2024/13/01 and 02/30/2023 then 2024/02/29")
	require.True(t, ok)
	assert.Equal(t, entity.MustDate(2024, time.February, 29), m.Date)

	_, ok = FindFirst("2023/02/29 13/01/2020")
	assert.False(t, ok)
}

func TestFindFirst_NoDate(t *testing.T) {
	_, ok := FindFirst("no dates in here at all 12345")
	assert.False(t, ok)
	_, ok = FindFirst("")
	assert.False(t, ok)
}

func TestFindMailingDate_PrefersLabeledWindow(t *testing.T) {
	filler := strings.Repeat("x", 400)
	text := "Header printed 2023/11/30 " + filler + " Notification Date: 2024/01/15 rest"
	m, ok := FindMailingDate(text)
	require.True(t, ok)
	assert.Equal(t, entity.MustDate(2024, time.January, 15), m.Date)
	assert.Equal(t, "2024/01/15", text[m.Offset:m.Offset+len(m.Text)])
}

func TestFindMailingDate_LabelOrder(t *testing.T) {
	filler := strings.Repeat(" ", 600)
	// "date:" appears first in the text but "mail date" is the first label tried
	text := "Date: 2024/02/01" + filler + "Mail Date 2024/03/01"
	m, ok := FindMailingDate(text)
	require.True(t, ok)
	assert.Equal(t, entity.MustDate(2024, time.March, 1), m.Date)
}

func TestFindMailingDate_WindowIsBounded(t *testing.T) {
	filler := strings.Repeat("y", LabelWindow+10)
	text := "2020/01/01 Mailed " + filler + " 2024/06/01"
	// the only dates sit outside the window right of the label, the left one is in range
	m, ok := FindMailingDate(text)
	require.True(t, ok)
	assert.Equal(t, entity.MustDate(2020, time.January, 1), m.Date)

	text = "Mailed " + filler + " 2024/06/01"
	m, ok = FindMailingDate(text)
	require.True(t, ok, "falls back to the first date anywhere")
	assert.Equal(t, entity.MustDate(2024, time.June, 1), m.Date)
}

func TestFindMailingDate_WindowCountsCharacters(t *testing.T) {
	// 230 CJK runes are 690 bytes but still inside a 250 character window
	text := "2019/01/01" + strings.Repeat(" ", 300) + "寄發日期 Mailed " + strings.Repeat("審", 230) + " 2024/07/08"
	m, ok := FindMailingDate(text)
	require.True(t, ok)
	assert.Equal(t, entity.MustDate(2024, time.July, 8), m.Date)
}

func TestFindMailingDate_Empty(t *testing.T) {
	_, ok := FindMailingDate("   \n\t")
	assert.False(t, ok)
}

func TestFindAll_NeverReturnsInvalidDates(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		text := fmt.Sprintf("%d/%d/%d %04d-%d-%d %s %d, %d",
			r.Intn(40), r.Intn(40), 1800+r.Intn(400),
			1800+r.Intn(400), r.Intn(15), r.Intn(35),
			[]string{"Jan", "feb", "SEPT", "december", "Jun"}[r.Intn(5)], r.Intn(40), 1900+r.Intn(200))
		for _, m := range FindAll(text) {
			_, ok := entity.NewDate(m.Date.Year, m.Date.Month, m.Date.Day)
			require.True(t, ok, "invalid date %v from %q", m.Date, text)
		}
	}
}

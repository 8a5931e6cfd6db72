// Package analytics reduces a user's journal entries into the dashboard summary.
// Every function is a single pass over its input and has no side effects.
package analytics

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/AnshRaj112/journal-backend/internal/models"
	"github.com/AnshRaj112/journal-backend/pkg/utils"
)

const (
	// Uncategorized buckets entries saved without a category
	Uncategorized = "Uncategorized"
	// WordCloudSize is how many words the cloud keeps
	WordCloudSize = 50
	// minCloudWordLength drops short filler words from the cloud
	minCloudWordLength = 3

	dateLayout = "2006-01-02"
)

type WordTrend struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Words int    `json:"words"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type WordFrequency struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type CategoryLength struct {
	Category string  `json:"category"`
	AvgWords float64 `json:"avgWords"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Summary is the payload of GET /api/journal/summary.
type Summary struct {
	Total                int              `json:"total"`
	From                 string           `json:"from,omitempty"`
	To                   string           `json:"to,omitempty"`
	TimeZone             string           `json:"timeZone"`
	CategoryDistribution map[string]int   `json:"categoryDistribution"`
	WordTrends           []WordTrend      `json:"wordTrends"`
	TimeOfDay            []HourCount      `json:"timeOfDayData"`
	WordCloud            []WordFrequency  `json:"wordCloudData"`
	AvgEntryLength       []CategoryLength `json:"avgEntryLengthData"`
	EntryFrequency       []DayCount       `json:"entryFrequencyArray"`
	MoodDistribution     map[string]int   `json:"moodDistribution"`
}

func categoryOf(j models.Journal) string {
	if c := strings.TrimSpace(j.Category); c != "" {
		return c
	}
	return Uncategorized
}

// Words splits the visible text of rich-text content.
func Words(content string) []string {
	return strings.Fields(utils.PlainText(content))
}

func CategoryDistribution(entries []models.Journal) map[string]int {
	out := make(map[string]int)
	for _, j := range entries {
		out[categoryOf(j)]++
	}
	return out
}

// WordTrends lists each entry's word count by the local date it was last updated, oldest first.
func WordTrends(entries []models.Journal, loc *time.Location) []WordTrend {
	sorted := make([]models.Journal, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].UpdatedAt.Before(sorted[b].UpdatedAt) })

	out := make([]WordTrend, 0, len(sorted))
	for _, j := range sorted {
		out = append(out, WordTrend{
			ID:    j.ID,
			Date:  j.UpdatedAt.In(loc).Format(dateLayout),
			Words: len(Words(j.Content)),
		})
	}
	return out
}

// TimeOfDay buckets entries by local hour. Hours with no entries are omitted.
func TimeOfDay(entries []models.Journal, loc *time.Location) []HourCount {
	var hours [24]int
	for _, j := range entries {
		hours[j.UpdatedAt.In(loc).Hour()]++
	}
	out := []HourCount{}
	for h, c := range hours {
		if c > 0 {
			out = append(out, HourCount{Hour: h, Count: c})
		}
	}
	return out
}

func cloudWord(w string) string {
	w = strings.TrimFunc(strings.ToLower(w), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len([]rune(w)) < minCloudWordLength {
		return ""
	}
	return w
}

// WordCloud returns the most frequent words. Ties are ordered alphabetically.
func WordCloud(entries []models.Journal, limit int) []WordFrequency {
	counts := make(map[string]int)
	for _, j := range entries {
		for _, w := range Words(j.Content) {
			if w = cloudWord(w); w != "" {
				counts[w]++
			}
		}
	}

	out := make([]WordFrequency, 0, len(counts))
	for text, n := range counts {
		out = append(out, WordFrequency{Text: text, Value: n})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Value != out[b].Value {
			return out[a].Value > out[b].Value
		}
		return out[a].Text < out[b].Text
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// AvgEntryLength is the mean word count per category, sorted by category.
func AvgEntryLength(entries []models.Journal) []CategoryLength {
	type acc struct{ words, count int }
	byCat := make(map[string]*acc)
	for _, j := range entries {
		c := categoryOf(j)
		if byCat[c] == nil {
			byCat[c] = &acc{}
		}
		byCat[c].words += len(Words(j.Content))
		byCat[c].count++
	}

	out := make([]CategoryLength, 0, len(byCat))
	for c, a := range byCat {
		out = append(out, CategoryLength{Category: c, AvgWords: float64(a.words) / float64(a.count)})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Category < out[b].Category })
	return out
}

// EntryFrequency counts entries per local day, oldest day first.
func EntryFrequency(entries []models.Journal, loc *time.Location) []DayCount {
	counts := make(map[string]int)
	for _, j := range entries {
		counts[j.UpdatedAt.In(loc).Format(dateLayout)]++
	}
	out := make([]DayCount, 0, len(counts))
	for d, c := range counts {
		out = append(out, DayCount{Date: d, Count: c})
	}
	// yyyy-mm-dd sorts chronologically as a string
	sort.Slice(out, func(a, b int) bool { return out[a].Date < out[b].Date })
	return out
}

// MoodDistribution counts sentiments; entries without one are skipped.
func MoodDistribution(entries []models.Journal) map[string]int {
	out := make(map[string]int)
	for _, j := range entries {
		if s := strings.TrimSpace(j.Sentiment); s != "" {
			out[s]++
		}
	}
	return out
}

// Summarize filters entries to r and computes every aggregate in loc.
func Summarize(entries []models.Journal, r Range, loc *time.Location) Summary {
	if loc == nil {
		loc = time.UTC
	}
	filtered := r.Filter(entries)

	return Summary{
		Total:                len(filtered),
		From:                 r.fromString(loc),
		To:                   r.toString(loc),
		TimeZone:             loc.String(),
		CategoryDistribution: CategoryDistribution(filtered),
		WordTrends:           WordTrends(filtered, loc),
		TimeOfDay:            TimeOfDay(filtered, loc),
		WordCloud:            WordCloud(filtered, WordCloudSize),
		AvgEntryLength:       AvgEntryLength(filtered),
		EntryFrequency:       EntryFrequency(filtered, loc),
		MoodDistribution:     MoodDistribution(filtered),
	}
}

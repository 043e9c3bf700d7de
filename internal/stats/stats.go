// Package stats summarizes the bookmark collection.
package stats

import (
	"sort"
	"time"

	"github.com/nikbrunner/sbm/internal/model"
)

const (
	topPlatforms = 10
	topTags      = 15
	activityDays = 7
)

// Count is a label with its number of bookmarks.
type Count struct {
	Label string
	Count int
}

// Day is one row of the activity histogram.
type Day struct {
	Date  time.Time
	Label string
	Count int
}

type Stats struct {
	Total      int
	ByCategory map[model.Category]int
	Folders    int // user folders plus the default folder
	Platforms  []Count
	Tags       []Count
	Activity   []Day // oldest first, ending today
}

// Compute builds the summary relative to now, in now's location.
func Compute(store *model.Store, now time.Time) Stats {
	s := Stats{
		Total:      len(store.Bookmarks),
		ByCategory: make(map[model.Category]int, len(model.Categories)),
		Folders:    len(store.Folders) + 1,
	}
	for _, c := range model.Categories {
		s.ByCategory[c] = 0
	}

	platforms := make(map[string]int)
	tags := make(map[string]int)
	for _, b := range store.Bookmarks {
		s.ByCategory[b.Category]++

		platform := b.Platform
		if platform == "" {
			platform = "Unknown"
		}
		platforms[platform]++

		for _, t := range b.Tags {
			tags[t]++
		}
	}
	s.Platforms = top(platforms, topPlatforms)
	s.Tags = top(tags, topTags)
	s.Activity = activity(store.Bookmarks, now)
	return s
}

// top returns the n largest counts, ties broken alphabetically.
func top(counts map[string]int, n int) []Count {
	out := make([]Count, 0, len(counts))
	for label, c := range counts {
		out = append(out, Count{Label: label, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func activity(bookmarks []model.Bookmark, now time.Time) []Day {
	loc := now.Location()
	today := startOfDay(now)

	days := make([]Day, activityDays)
	index := make(map[time.Time]int, activityDays)
	for i := range days {
		ago := activityDays - 1 - i
		date := today.AddDate(0, 0, -ago)
		days[i] = Day{Date: date, Label: dayLabel(date, ago)}
		index[date] = i
	}

	for _, b := range bookmarks {
		day := startOfDay(b.CreatedAt().In(loc))
		if i, ok := index[day]; ok {
			days[i].Count++
		}
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayLabel(date time.Time, daysAgo int) string {
	switch daysAgo {
	case 0:
		return "Today"
	case 1:
		return "Yesterday"
	}
	return date.Format("Mon, Jan 2")
}

// MaxActivity returns the largest daily count, at least 1.
func (s Stats) MaxActivity() int {
	max := 1
	for _, d := range s.Activity {
		if d.Count > max {
			max = d.Count
		}
	}
	return max
}

package stats_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/sbm/internal/model"
	"github.com/nikbrunner/sbm/internal/stats"
)

func at(t time.Time) int64 { return t.UnixMilli() }

func TestCompute(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	store := model.NewStore()
	store.Folders = []model.Folder{{ID: "f1", Name: "Reading"}}
	store.Bookmarks = []model.Bookmark{
		{URL: "https://youtube.com/watch?v=1", Category: model.CategoryVideo, Platform: "YouTube", Tags: []string{"music", "live"}, Timestamp: at(now.Add(-time.Hour))},
		{URL: "https://youtube.com/watch?v=2", Category: model.CategoryVideo, Platform: "YouTube", Tags: []string{"music"}, Timestamp: at(now.Add(-20 * time.Hour))},
		{URL: "https://pinterest.com/pin/1", Category: model.CategoryImage, Platform: "Pinterest", Tags: []string{}, Timestamp: at(now.AddDate(0, 0, -3))},
		{URL: "https://example.com", Category: model.CategoryText, Platform: "", Tags: []string{"go"}, Timestamp: at(now.AddDate(0, 0, -30))},
	}

	s := stats.Compute(store, now)

	assert.Equal(t, s.Total, 4)
	assert.Equal(t, s.Folders, 2)
	assert.Equal(t, s.ByCategory[model.CategoryVideo], 2)
	assert.Equal(t, s.ByCategory[model.CategoryImage], 1)
	assert.Equal(t, s.ByCategory[model.CategoryAudio], 0)
	assert.Equal(t, s.ByCategory[model.CategoryText], 1)

	assert.DeepEqual(t, s.Platforms, []stats.Count{{"YouTube", 2}, {"Pinterest", 1}, {"Unknown", 1}})
	assert.DeepEqual(t, s.Tags, []stats.Count{{"music", 2}, {"go", 1}, {"live", 1}})

	assert.Equal(t, len(s.Activity), 7)
	assert.Equal(t, s.Activity[6].Label, "Today")
	assert.Equal(t, s.Activity[6].Count, 2)
	assert.Equal(t, s.Activity[5].Label, "Yesterday")
	assert.Equal(t, s.Activity[5].Count, 0)
	assert.Equal(t, s.Activity[3].Label, "Tue, Mar 12")
	assert.Equal(t, s.Activity[3].Count, 1)
	assert.Equal(t, s.Activity[0].Label, "Sat, Mar 9")
	assert.Equal(t, s.MaxActivity(), 2)
}

func TestCompute_TopLimits(t *testing.T) {
	store := model.NewStore()
	for i := 0; i < 20; i++ {
		store.Bookmarks = append(store.Bookmarks, model.Bookmark{
			Platform: fmt.Sprintf("P%02d", i),
			Tags:     []string{fmt.Sprintf("t%02d", i)},
		})
	}
	s := stats.Compute(store, time.Now())
	assert.Equal(t, len(s.Platforms), 10)
	assert.Equal(t, len(s.Tags), 15)
	assert.Equal(t, s.Platforms[0].Label, "P00")
}

func TestRender(t *testing.T) {
	empty := stats.Render(stats.Compute(model.NewStore(), time.Now()))
	assert.Assert(t, strings.Contains(empty, "No platforms yet."))
	assert.Assert(t, strings.Contains(empty, "No activity yet."))

	store := model.NewStore()
	store.AddBookmark(model.NewBookmark(model.NewBookmarkParams{URL: "https://vimeo.com/1", Title: "Clip", Category: model.CategoryVideo, Platform: "Vimeo", Tags: []string{"film"}}))
	out := stats.Render(stats.Compute(store, time.Now()))
	for _, want := range []string{"Vimeo", "film", "Today", "Last 7 days"} {
		assert.Assert(t, strings.Contains(out, want), "missing %q", want)
	}
}

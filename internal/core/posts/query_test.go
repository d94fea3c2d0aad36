package posts

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func view(id, authorID int64, groupID *int64, created time.Time) *PostView {
	v := &PostView{ID: id, CreatedAt: created, Author: &AuthorView{ID: authorID}}
	if groupID != nil {
		v.Group = &GroupRef{ID: *groupID}
	}
	return v
}

func TestQueryMatches(t *testing.T) {
	g1, g2 := int64(1), int64(2)
	now := time.Now()
	inG1 := view(1, 10, &g1, now)
	inG2 := view(2, 20, &g2, now)
	noGroup := view(3, 10, nil, now)

	tests := []struct {
		name  string
		query Query
		want  []bool // inG1, inG2, noGroup
	}{
		{name: "all", query: AllPosts(), want: []bool{true, true, true}},
		{name: "group 1", query: InGroup(1), want: []bool{true, false, false}},
		{name: "group without posts", query: InGroup(99), want: []bool{false, false, false}},
		{name: "author 10", query: ByAuthor(10), want: []bool{true, false, true}},
		{name: "authors 10 and 20", query: ByAnyAuthor([]int64{10, 20}), want: []bool{true, true, true}},
		{name: "no authors", query: ByAnyAuthor(nil), want: []bool{false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []bool{tt.query.Matches(inG1), tt.query.Matches(inG2), tt.query.Matches(noGroup)}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryMatchesNothing(t *testing.T) {
	assert.True(t, ByAnyAuthor(nil).MatchesNothing())
	assert.True(t, ByAnyAuthor([]int64{}).MatchesNothing())
	assert.False(t, ByAnyAuthor([]int64{1}).MatchesNothing())
	assert.False(t, AllPosts().MatchesNothing())
}

func TestCompareNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	posts := []*PostView{
		view(1, 1, nil, base),
		view(2, 1, nil, base.Add(time.Minute)),
		view(3, 1, nil, base),
		view(4, 1, nil, base.Add(-time.Minute)),
	}

	slices.SortFunc(posts, CompareNewestFirst)

	var ids []int64
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{2, 3, 1, 4}, ids)
}

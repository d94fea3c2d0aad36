package posts

import "cmp"

// Query is a predicate over posts, evaluated by the repository.
// Unset fields do not filter; all set fields must match.
type Query struct {
	GroupID  *int64
	AuthorID *int64
	// AuthorIDs restricts to posts by any of these authors.
	// nil means no restriction; an empty non-nil slice matches nothing.
	AuthorIDs []int64
}

// AllPosts matches every post
func AllPosts() Query {
	return Query{}
}

// InGroup matches posts whose group is groupID
func InGroup(groupID int64) Query {
	return Query{GroupID: &groupID}
}

// ByAuthor matches posts written by authorID
func ByAuthor(authorID int64) Query {
	return Query{AuthorID: &authorID}
}

// ByAnyAuthor matches posts written by any of authorIDs
func ByAnyAuthor(authorIDs []int64) Query {
	if authorIDs == nil {
		authorIDs = []int64{}
	}
	return Query{AuthorIDs: authorIDs}
}

// MatchesNothing reports whether the query can be answered without a lookup
func (q Query) MatchesNothing() bool {
	return q.AuthorIDs != nil && len(q.AuthorIDs) == 0
}

// Matches evaluates the predicate against a single post
func (q Query) Matches(p *PostView) bool {
	if q.GroupID != nil {
		if p.Group == nil || p.Group.ID != *q.GroupID {
			return false
		}
	}
	if q.AuthorID != nil && p.AuthorIdentity() != *q.AuthorID {
		return false
	}
	if q.AuthorIDs != nil {
		found := false
		for _, id := range q.AuthorIDs {
			if p.AuthorIdentity() == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// CompareNewestFirst orders posts by creation time descending.
// Posts created at the same instant fall back to id descending, so later inserts come first.
func CompareNewestFirst(a, b *PostView) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

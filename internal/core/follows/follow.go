package follows

import "time"

// Follow is a directed subscription: UserID reads AuthorID's posts in their feed.
// Each (UserID, AuthorID) pair exists at most once and UserID never equals AuthorID.
type Follow struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	AuthorID  int64     `json:"authorId" db:"author_id"`
}

// Stats are the follow counters shown on a profile
type Stats struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}

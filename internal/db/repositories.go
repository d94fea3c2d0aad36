// Package db selects the storage backend behind the core repositories.
package db

import (
	"database/sql"

	"Yatube/internal/core/follows"
	"Yatube/internal/core/groups"
	"Yatube/internal/core/posts"
	"Yatube/internal/core/users"
	"Yatube/internal/db/memory"
	"Yatube/internal/db/postgres"
)

// Repositories groups one implementation of every repository
type Repositories struct {
	Users   users.UserRepository
	Groups  groups.Repository
	Posts   posts.Repository
	Follows follows.Repository
}

// NewPostgresRepositories backs every repository with PostgreSQL
func NewPostgresRepositories(conn *sql.DB) Repositories {
	return Repositories{
		Users:   postgres.NewUserRepository(conn),
		Groups:  postgres.NewGroupRepository(conn),
		Posts:   postgres.NewPostRepository(conn),
		Follows: postgres.NewFollowRepository(conn),
	}
}

// NewMemoryRepositories backs every repository with one in-process store
func NewMemoryRepositories() Repositories {
	store := memory.NewStore()
	return Repositories{
		Users:   store.Users(),
		Groups:  store.Groups(),
		Posts:   store.Posts(),
		Follows: store.Follows(),
	}
}

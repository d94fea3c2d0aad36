// Command seed fills a development database with users, groups, posts and follows
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"

	_ "github.com/lib/pq"

	"Yatube/internal/config"
	"Yatube/internal/core/access"
	"Yatube/internal/core/follows"
	"Yatube/internal/core/groups"
	"Yatube/internal/core/posts"
	"Yatube/internal/core/users"
	"Yatube/internal/db"
	"Yatube/internal/db/migrations"
)

const seedPassword = "yatube-dev-password"

var seedUsers = []users.RegisterRequest{
	{Username: "leo", FirstName: "Leo", LastName: "Tolstoy"},
	{Username: "anna", FirstName: "Anna", LastName: "Akhmatova"},
	{Username: "fyodor", FirstName: "Fyodor", LastName: "Dostoevsky"},
}

var seedGroups = []groups.CreateGroupRequest{
	{Title: "Cats", Slug: "cats", Description: "Photos and stories about cats"},
	{Title: "Books", Slug: "books", Description: "What we are reading"},
}

func main() {
	postsPerUser := flag.Int("posts", 12, "posts to create for each user")
	flag.Parse()

	config.LoadDotEnvs("")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer conn.Close()

	if err := migrations.Up(ctx, conn); err != nil {
		log.Fatal(err)
	}

	repos := db.NewPostgresRepositories(conn)
	userService := users.NewUserService(repos.Users)
	groupService := groups.NewGroupService(repos.Groups)
	followService := follows.NewFollowService(repos.Follows, userService)
	// seeded posts carry no images
	postService := posts.NewPostService(repos.Posts, groupService, nil)

	var authors []*users.User
	for _, req := range seedUsers {
		req.Password = seedPassword
		user, err := userService.Register(ctx, req)
		if errors.Is(err, users.ErrUsernameTaken) {
			user, err = userService.GetUserByUsername(ctx, req.Username)
		}
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", req.Username, err)
		}
		authors = append(authors, user)
	}

	for _, req := range seedGroups {
		_, err := groupService.CreateGroup(ctx, req)
		if err != nil && !groups.IsValidationError(err) {
			log.Fatalf("Failed to seed group %s: %v", req.Slug, err)
		}
	}

	for i, author := range authors {
		viewer := access.Identified(author.ID, author.Username)
		for n := 1; n <= *postsPerUser; n++ {
			group := ""
			if n%3 != 0 {
				group = seedGroups[(i+n)%len(seedGroups)].Slug
			}
			_, err := postService.CreatePost(ctx, viewer, posts.CreatePostRequest{
				Text:      fmt.Sprintf("Post %d by %s", n, author.FullName()),
				GroupSlug: group,
			})
			if err != nil {
				log.Fatalf("Failed to seed post for %s: %v", author.Username, err)
			}
		}

		// everyone follows the next author
		next := authors[(i+1)%len(authors)]
		if err := followService.Follow(ctx, viewer, next.Username); err != nil {
			log.Fatalf("Failed to seed follow %s -> %s: %v", author.Username, next.Username, err)
		}
	}

	slog.Info("seed completed", "users", len(authors), "groups", len(seedGroups), "posts", len(authors)*(*postsPerUser))
}

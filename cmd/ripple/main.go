// Package main provides a smoke-test client for the Ripple backend: it
// logs in, loads the feed, connects the realtime layer, joins a post
// room, sends a comment, and prints what comes back.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ripple/internal/api"
	"ripple/internal/config"
	"ripple/internal/observability"
	"ripple/internal/realtime"
	"ripple/internal/service"
	"ripple/internal/session"
	"ripple/internal/store"
)

func main() {
	email := flag.String("email", "admin@example.com", "Account email")
	password := flag.String("password", "password123", "Account password")
	postID := flag.Uint("post", 0, "Post to join and comment on (0 = first feed post)")
	message := flag.String("message", "hello from the ripple smoke client", "Comment text to send")
	duration := flag.Duration("duration", 15*time.Second, "How long to listen for events")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "ripple-client",
		ServiceVersion: "dev",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.SamplerRatio,
	})
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	sessionStore, err := buildSessionStore(cfg)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}
	sessions := session.NewManager(sessionStore)

	client := api.NewClient(cfg.APIBaseURL, sessions, cfg.HTTPTimeout())
	st := store.New()
	auth := service.NewAuthService(client, sessions, st)

	ctx := observability.WithCorrelationID(context.Background(), uuid.NewString())

	user, err := auth.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	if user == nil {
		user, err = auth.Login(ctx, *email, *password)
		if err != nil {
			log.Fatalf("login: %v", err)
		}
		log.Printf("logged in as %s (id %d)", user.Username, user.ID)
	} else {
		log.Printf("silent re-auth as %s (id %d)", user.Username, user.ID)
	}

	feed := service.NewFeedService(client, client, st)
	if err := feed.Refresh(ctx); err != nil {
		log.Fatalf("feed: %v", err)
	}
	posts := st.Posts()
	log.Printf("loaded %d posts (has more: %v)", len(posts), st.HasMore())
	for i, p := range posts {
		if i >= 5 {
			break
		}
		log.Printf("  [%d] %s: %s (%d likes)", p.ID, p.User.Username, truncate(p.Content, 60), p.LikesCount)
	}

	target := *postID
	if target == 0 {
		if len(posts) == 0 {
			log.Fatal("feed is empty, nothing to comment on")
		}
		target = posts[0].ID
	}

	likes := service.NewLikeService(client, st)
	if err := likes.ToggleLike(ctx, target, user.ID); err != nil {
		log.Printf("like toggle failed (rolled back): %v", err)
	} else if p, ok := st.Post(target); ok {
		log.Printf("toggled like on post %d, now %d likes", target, p.LikesCount)
	}

	conn := realtime.NewManager(realtime.Config{
		URL:      cfg.WSURL,
		Attempts: cfg.ReconnectAttempts,
		Delay:    cfg.ReconnectDelay(),
	}, sessions)
	defer conn.Disconnect()

	unbind := service.BindStore(conn, st)
	defer unbind()

	if err := conn.Connect(ctx); err != nil {
		log.Fatalf("connect: %v", err)
	}

	if err := feed.LoadComments(ctx, target); err != nil {
		log.Fatalf("comments: %v", err)
	}
	log.Printf("post %d has %d comments", target, len(st.Comments(target)))

	rooms := realtime.NewRoomTracker(conn)
	unmount := rooms.Mount(realtime.RoomPost, target)
	defer unmount()

	compose := service.NewComposeService(conn, client, st)
	if err := compose.SendComment(ctx, target, *message, nil); err != nil {
		log.Fatalf("send comment: %v", err)
	}
	log.Printf("comment sent, listening for %v...", *duration)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	select {
	case <-time.After(*duration):
	case <-interrupt:
		log.Println("interrupted")
	}

	for _, c := range st.Comments(target) {
		log.Printf("  comment %s by %s: %s", c.ID, c.User.Username, truncate(c.Content, 60))
	}
}

func buildSessionStore(cfg *config.Config) (session.Store, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			// Plain host:port values are accepted too.
			opts = &redis.Options{Addr: cfg.RedisURL}
		}
		return session.NewRedisStore(redis.NewClient(opts), "", 0), nil
	}
	return session.NewSQLiteStore(cfg.SessionCachePath)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}

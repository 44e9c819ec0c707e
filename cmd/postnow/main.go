// Command postnow runs the pipeline once from the command line: generate
// (or take pre-written text), publish, print the post ID. It can also
// list or delete posts already published.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/postforge/postforge/internal/api/linkedin"
	"github.com/postforge/postforge/internal/config"
	"github.com/postforge/postforge/internal/domain"
	"github.com/postforge/postforge/internal/generator"
	"github.com/postforge/postforge/internal/identity"
	"github.com/postforge/postforge/internal/pipeline"
	"github.com/postforge/postforge/internal/publisher"
	"github.com/postforge/postforge/internal/registration"
	"github.com/postforge/postforge/internal/safehttp"
)

func main() {
	var (
		configPath   = flag.String("config", "config.yaml", "config file path")
		topic        = flag.String("topic", "", "topic to generate a post about")
		content      = flag.String("content", "", "pre-written text, skips generation")
		tone         = flag.String("tone", "", "tone: professional, casual, inspirational, educational, promotional")
		length       = flag.String("length", "", "length: short, medium, long")
		visibility   = flag.String("visibility", "PUBLIC", "visibility: PUBLIC or CONNECTIONS")
		audience     = flag.String("audience", "", "target audience")
		cta          = flag.String("cta", "", "call to action")
		noHashtags   = flag.Bool("no-hashtags", false, "omit hashtags")
		maxChars     = flag.Int("max-chars", 0, "character ceiling override")
		articleTitle = flag.String("article-title", "", "publish as an article with this title")
		listCount    = flag.Int("list", 0, "list the N most recent posts and exit")
		analyticsID  = flag.String("analytics", "", "print engagement counts for the given post ID and exit")
		deleteID     = flag.String("delete", "", "delete the given post ID and exit")
		dryRun       = flag.Bool("dry-run", false, "generate only, print without publishing")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	registration.RegisterBuiltins()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	httpClient := safehttp.NewClient(60 * time.Second)

	liOpts := []linkedin.ClientOption{linkedin.WithHTTPClient(httpClient)}
	if cfg.LinkedIn.BaseURL != "" {
		liOpts = append(liOpts, linkedin.WithBaseURL(cfg.LinkedIn.BaseURL))
	}
	li := linkedin.NewClient(cfg.LinkedIn.AccessToken, liOpts...)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch {
	case *listCount > 0:
		listPosts(ctx, li, cfg.LinkedIn.PersonID, *listCount)
		return
	case *analyticsID != "":
		postAnalytics(ctx, li, *analyticsID)
		return
	case *deleteID != "":
		deletePost(ctx, li, *deleteID)
		return
	}

	if *topic == "" && *content == "" {
		fmt.Fprintln(os.Stderr, "either -topic or -content is required")
		flag.Usage()
		os.Exit(2)
	}

	spec := &domain.ContentSpec{
		Topic:           *topic,
		Content:         *content,
		Tone:            domain.Tone(*tone),
		Length:          domain.Length(*length),
		IncludeHashtags: !*noHashtags,
		TargetAudience:  *audience,
		CallToAction:    *cta,
		MaxChars:        *maxChars,
	}

	gen, err := generator.New(cfg.Generator, httpClient)
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}

	if *dryRun {
		generated, err := gen.Generate(ctx, spec)
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}
		fmt.Println(generated.Text)
		return
	}

	vis := domain.Visibility(*visibility)
	if !vis.Valid() {
		log.Fatalf("Invalid visibility %q", *visibility)
	}

	fetcher := identity.NewLinkedInFetcher(li)
	pub := publisher.NewLinkedInPublisher(li,
		publisher.WithMaxChars(cfg.Generator.MaxChars),
		publisher.WithLogger(logger),
	)

	if *articleTitle != "" {
		publishArticle(ctx, fetcher, gen, pub, spec, vis, *articleTitle)
		return
	}

	pipe := pipeline.New(fetcher, gen, pub, pipeline.WithLogger(logger))
	result, err := pipe.Run(ctx, spec, vis)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	fmt.Printf("published %s\n", result.PostID)
}

func publishArticle(ctx context.Context, fetcher identity.Fetcher, gen generator.Generator, pub *publisher.LinkedInPublisher, spec *domain.ContentSpec, vis domain.Visibility, title string) {
	user, err := fetcher.Fetch(ctx)
	if err != nil {
		log.Fatalf("Identity fetch failed: %v", err)
	}

	text := spec.Content
	if text == "" {
		generated, err := gen.Generate(ctx, spec)
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}
		text = generated.Text
	}

	result, err := pub.PublishArticle(ctx, &domain.PostRequest{
		AuthorID:   user.ID,
		Text:       text,
		Visibility: vis,
	}, title)
	if err != nil {
		log.Fatalf("Publish failed: %v", err)
	}

	fmt.Printf("published article %s\n", result.PostID)
}

func listPosts(ctx context.Context, li *linkedin.Client, personID string, count int) {
	if personID == "" {
		log.Fatal("linkedin.person_id must be configured to list posts")
	}

	posts, err := li.ListPosts(ctx, publisher.AuthorURN(personID), count)
	if err != nil {
		log.Fatalf("List failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(posts); err != nil {
		log.Fatalf("Encode failed: %v", err)
	}
}

func postAnalytics(ctx context.Context, li *linkedin.Client, postID string) {
	stats, err := li.PostAnalytics(ctx, postID)
	if err != nil {
		log.Fatalf("Analytics failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		log.Fatalf("Encode failed: %v", err)
	}
}

func deletePost(ctx context.Context, li *linkedin.Client, postID string) {
	if err := li.DeletePost(ctx, postID); err != nil {
		log.Fatalf("Delete failed: %v", err)
	}
	fmt.Printf("deleted %s\n", postID)
}

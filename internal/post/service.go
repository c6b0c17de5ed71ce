package post

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"backend-blogapp/internal/db"
	"backend-blogapp/internal/media"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrValidation    = errors.New("invalid publish request")
	ErrCoverUpload   = errors.New("cover upload failed")
	ErrSlugExhausted = errors.New("could not allocate unique slug")
	ErrNotFound      = errors.New("post not found")
)

const slugAttempts = 5

var sanitizer = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataURIImages()
	return p
}()

// Extractor rewrites a content body, uploading its temporary references.
type Extractor interface {
	Extract(ctx context.Context, body, folder string) media.ExtractResult
}

// Notifier fans a publish event out to the owner's current followers.
type Notifier interface {
	FanOutNewPost(ctx context.Context, ownerID, postID string) error
}

type Service struct {
	db        db.Querier
	uploader  media.BlobUploader
	extractor Extractor
	fetch     media.Fetcher
	notifier  Notifier
	maxTags   int
}

func NewService(db db.Querier, uploader media.BlobUploader, extractor Extractor, fetch media.Fetcher, notifier Notifier, maxTags int) *Service {
	if maxTags <= 0 {
		maxTags = 4
	}
	return &Service{
		db:        db,
		uploader:  uploader,
		extractor: extractor,
		fetch:     fetch,
		notifier:  notifier,
		maxTags:   maxTags,
	}
}

// Publish runs the whole pipeline: cover upload, inline-image extraction,
// slug allocation, post insert, then tag links, image snapshot and follower
// fan-out. The post insert is the commit point; everything after it is
// best-effort and only logged on failure.
func (s *Service) Publish(ctx context.Context, authorID string, req PublishRequest) (PublishResult, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return PublishResult{}, fmt.Errorf("%w: title required", ErrValidation)
	}
	if strings.TrimSpace(req.Content) == "" {
		return PublishResult{}, fmt.Errorf("%w: content required", ErrValidation)
	}
	if len(req.Tags) > s.maxTags {
		return PublishResult{}, fmt.Errorf("%w: at most %d tags", ErrValidation, s.maxTags)
	}

	coverURL, err := s.resolveCover(ctx, req.CoverImageURL)
	if err != nil {
		return PublishResult{}, err
	}

	// Extraction runs on the raw body: the sanitizer drops img tags with
	// refs it cannot resolve, so failures must be recorded first.
	extracted := s.extractor.Extract(ctx, req.Content, "blog/content")

	created, err := s.insertWithSlug(ctx, Post{
		ID:            uuid.NewString(),
		UserID:        authorID,
		Title:         title,
		Content:       sanitizer.Sanitize(extracted.Body),
		CoverImageURL: coverURL,
		IsPublic:      req.IsPublic,
	})
	if err != nil {
		return PublishResult{}, err
	}

	if len(req.Tags) > 0 {
		if err := s.LinkTags(ctx, created.ID, req.Tags); err != nil {
			log.Printf("publish %s: link tags: %v", created.ID, err)
		}
	}
	if len(extracted.Uploaded) > 0 {
		if err := s.ReplaceImages(ctx, created.ID, extracted.Uploaded); err != nil {
			log.Printf("publish %s: save images: %v", created.ID, err)
		}
	}
	if err := s.notifier.FanOutNewPost(ctx, authorID, created.ID); err != nil {
		log.Printf("publish %s: notify followers: %v", created.ID, err)
	}

	return PublishResult{
		Post:           created,
		UploadedImages: extracted.Uploaded,
		FailedUploads:  extracted.Failed,
	}, nil
}

// resolveCover passes permanent URLs through and uploads anything else.
// Unlike inline images, a failing cover aborts the publish.
func (s *Service) resolveCover(ctx context.Context, ref string) (string, error) {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	data, contentType, err := s.fetch.Fetch(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCoverUpload, err)
	}
	obj, err := s.uploader.Upload(ctx, data, contentType, "blog/cover")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCoverUpload, err)
	}
	return obj.URL, nil
}

func (s *Service) insertWithSlug(ctx context.Context, input Post) (Post, error) {
	base := slugify(input.Title)
	for attempt := 0; attempt < slugAttempts; attempt++ {
		candidate, err := s.nextSlug(ctx, base)
		if err != nil {
			return Post{}, err
		}

		row := s.db.QueryRow(ctx, `
			INSERT INTO posts (id, user_id, title, slug, content_html, cover_image_url, is_public)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING created_at, updated_at
		`, input.ID, input.UserID, input.Title, candidate, input.Content, input.CoverImageURL, input.IsPublic)
		err = row.Scan(&input.CreatedAt, &input.UpdatedAt)
		if err == nil {
			input.Slug = candidate
			return input, nil
		}
		if !isSlugConflict(err) {
			return Post{}, err
		}
		// Lost the race for this candidate, re-derive and retry.
	}
	return Post{}, ErrSlugExhausted
}

func isSlugConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "slug")
}

// NormalizeTags lowercases and trims each tag, drops empties and
// deduplicates preserving first occurrence.
func NormalizeTags(tags []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, tag := range tags {
		name := strings.ToLower(strings.TrimSpace(tag))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// LinkTags upserts each normalized tag and links it to the post. Both
// inserts are idempotent, so re-linking an existing tag is a no-op.
func (s *Service) LinkTags(ctx context.Context, postID string, tags []string) error {
	for _, name := range NormalizeTags(tags) {
		if _, err := s.db.Exec(ctx, `
			INSERT INTO tags (id, name) VALUES ($1,$2)
			ON CONFLICT (name) DO NOTHING
		`, uuid.NewString(), name); err != nil {
			return err
		}

		var tagID string
		if err := s.db.QueryRow(ctx, `SELECT id FROM tags WHERE name = $1`, name).Scan(&tagID); err != nil {
			return err
		}

		if _, err := s.db.Exec(ctx, `
			INSERT INTO post_tags (post_id, tag_id) VALUES ($1,$2)
			ON CONFLICT DO NOTHING
		`, postID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceImages swaps the post's inline-image snapshot as a whole set.
func (s *Service) ReplaceImages(ctx context.Context, postID string, urls []string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM post_images WHERE post_id = $1`, postID); err != nil {
		return err
	}
	for i, url := range urls {
		if _, err := s.db.Exec(ctx, `
			INSERT INTO post_images (post_id, url, position)
			VALUES ($1,$2,$3)
			ON CONFLICT (post_id, position) DO UPDATE SET url = EXCLUDED.url
		`, postID, url, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Post, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, title, slug, content_html, COALESCE(cover_image_url, ''), is_public, created_at, updated_at
		FROM posts WHERE slug = $1
	`, slug)

	var p Post
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Slug, &p.Content, &p.CoverImageURL, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Post, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, title, slug, content_html, COALESCE(cover_image_url, ''), is_public, created_at, updated_at
		FROM posts WHERE id = $1
	`, id)

	var p Post
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Slug, &p.Content, &p.CoverImageURL, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

func (s *Service) Owner(ctx context.Context, postID string) (string, error) {
	var ownerID string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM posts WHERE id = $1`, postID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return ownerID, err
}

func (s *Service) ListPublic(ctx context.Context, limit, offset int) ([]Post, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, title, slug, COALESCE(cover_image_url, ''), created_at
		FROM posts
		WHERE is_public = true
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Post, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, title, slug, COALESCE(cover_image_url, ''), created_at
		FROM posts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// ListTopLiked returns public posts ranked by like count, ties broken by
// recency. Content is included so callers can render excerpts.
func (s *Service) ListTopLiked(ctx context.Context, limit int) ([]Post, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.user_id, p.title, p.slug, COALESCE(p.cover_image_url, ''), p.created_at,
		       p.content_html, COUNT(l.user_id)::int AS likes
		FROM posts p
		LEFT JOIN post_likes l ON l.post_id = p.id
		WHERE p.is_public = true
		GROUP BY p.id
		ORDER BY likes DESC, p.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Slug, &p.CoverImageURL, &p.CreatedAt, &p.Content, &p.Likes); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Service) ListTopShared(ctx context.Context, limit int) ([]Post, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.user_id, p.title, p.slug, COALESCE(p.cover_image_url, ''), p.created_at,
		       p.content_html, COUNT(sh.user_id)::int AS shares
		FROM posts p
		LEFT JOIN post_shares sh ON sh.post_id = p.id
		WHERE p.is_public = true
		GROUP BY p.id
		ORDER BY shares DESC, p.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Slug, &p.CoverImageURL, &p.CreatedAt, &p.Content, &p.Shares); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Feed lists the caller's posts plus those of everyone they follow, with
// the inline-image snapshots attached.
func (s *Service) Feed(ctx context.Context, userID string) ([]Post, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, title, slug, COALESCE(cover_image_url, ''), created_at
		FROM posts
		WHERE user_id = $1
		   OR user_id IN (SELECT following_id FROM follows WHERE follower_id = $1)
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts, err := scanSummaries(rows)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	images, err := s.loadImages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Images = images[posts[i].ID]
	}
	return posts, nil
}

func (s *Service) loadImages(ctx context.Context, postIDs []string) (map[string][]PostImage, error) {
	if len(postIDs) == 0 {
		return map[string][]PostImage{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT post_id, url, position
		FROM post_images WHERE post_id = ANY($1)
		ORDER BY position
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := map[string][]PostImage{}
	for rows.Next() {
		var img PostImage
		if err := rows.Scan(&img.PostID, &img.URL, &img.Position); err != nil {
			return nil, err
		}
		images[img.PostID] = append(images[img.PostID], img)
	}
	return images, rows.Err()
}

func scanSummaries(rows pgx.Rows) ([]Post, error) {
	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Slug, &p.CoverImageURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

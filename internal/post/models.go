package post

import "time"

type Post struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	Title         string      `json:"title"`
	Slug          string      `json:"slug"`
	Content       string      `json:"content_html,omitempty"`
	CoverImageURL string      `json:"cover_image_url,omitempty"`
	IsPublic      bool        `json:"is_public"`
	Images        []PostImage `json:"images,omitempty"`
	Likes         int         `json:"likes,omitempty"`
	Shares        int         `json:"shares,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type PostImage struct {
	PostID   string `json:"post_id"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ReplaceImagesRequest struct {
	Images []string `json:"images"`
}

type PublishRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	CoverImageURL string   `json:"cover_image_url"`
	IsPublic      bool     `json:"is_public"`
	Tags          []string `json:"tags"`
}

// PublishResult carries the created post plus the inline-upload outcome so
// callers can warn about references that stayed temporary.
type PublishResult struct {
	Post           Post     `json:"post"`
	UploadedImages []string `json:"uploaded_images"`
	FailedUploads  []string `json:"failed_uploads"`
}

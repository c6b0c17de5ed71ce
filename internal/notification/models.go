package notification

import "time"

const (
	KindLike    = "like"
	KindShare   = "share"
	KindFollow  = "follow"
	KindNewPost = "new_post"
)

type Notification struct {
	ID            string    `json:"id"`
	RecipientID   string    `json:"recipient_id"`
	ActorID       string    `json:"actor_id"`
	ActorUsername string    `json:"actor_username"`
	ActorEmail    string    `json:"actor_email"`
	Kind          string    `json:"kind"`
	PostID        string    `json:"post_id,omitempty"`
	PostTitle     string    `json:"post_title,omitempty"`
	PostSlug      string    `json:"post_slug,omitempty"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

type MarkReadRequest struct {
	IDs []string `json:"notification_ids"`
}

// Event is the payload pushed to the live stream when a notification is
// created.
type Event struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	ActorID string `json:"actor_id"`
	PostID  string `json:"post_id,omitempty"`
}

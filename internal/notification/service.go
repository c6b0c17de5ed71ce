package notification

import (
	"context"
	"encoding/json"
	"log"

	"backend-blogapp/internal/db"

	"github.com/google/uuid"
)

const listLimit = 50

// Broadcaster pushes live events to connected recipients.
type Broadcaster interface {
	Broadcast(recipientID string, payload []byte)
}

type Service struct {
	db  db.Querier
	hub Broadcaster
}

// NewService builds the fan-out service. hub may be nil; live events are
// then skipped and only rows are written.
func NewService(db db.Querier, hub Broadcaster) *Service {
	return &Service{db: db, hub: hub}
}

// Emit inserts one notification. A self-notification (actor == recipient)
// is silently dropped, never stored.
func (s *Service) Emit(ctx context.Context, recipientID, actorID, kind, postID string) error {
	if recipientID == "" || recipientID == actorID {
		return nil
	}

	id := uuid.NewString()
	var subject any
	if postID != "" {
		subject = postID
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, actor_id, kind, post_id)
		VALUES ($1,$2,$3,$4,$5)
	`, id, recipientID, actorID, kind, subject)
	if err != nil {
		return err
	}

	s.publish(recipientID, Event{ID: id, Kind: kind, ActorID: actorID, PostID: postID})
	return nil
}

// FanOutNewPost snapshots the owner's follower set and emits one new_post
// notification per follower in a single insert. Followers gained after the
// snapshot see nothing for this post.
func (s *Service) FanOutNewPost(ctx context.Context, ownerID, postID string) error {
	rows, err := s.db.Query(ctx, `
		SELECT follower_id FROM follows WHERE following_id = $1
	`, ownerID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var followers []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		followers = append(followers, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(followers) == 0 {
		return nil
	}

	ids := make([]string, len(followers))
	for i := range followers {
		ids[i] = uuid.NewString()
	}
	if _, err := s.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, actor_id, kind, post_id)
		SELECT unnest($1::text[]), unnest($2::text[]), $3, $4, $5
	`, ids, followers, ownerID, KindNewPost, postID); err != nil {
		return err
	}

	for i, follower := range followers {
		s.publish(follower, Event{ID: ids[i], Kind: KindNewPost, ActorID: ownerID, PostID: postID})
	}
	return nil
}

// List returns the recipient's newest notifications, capped at 50, with
// actor display fields and the subject post when present.
func (s *Service) List(ctx context.Context, recipientID string) ([]Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT n.id, n.user_id, n.actor_id, COALESCE(u.username, ''), COALESCE(u.email, ''),
		       n.kind, COALESCE(n.post_id, ''), COALESCE(p.title, ''), COALESCE(p.slug, ''),
		       n.is_read, n.created_at
		FROM notifications n
		LEFT JOIN users u ON u.id = n.actor_id
		LEFT JOIN posts p ON p.id = n.post_id
		WHERE n.user_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2
	`, recipientID, listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.ActorID, &n.ActorUsername, &n.ActorEmail,
			&n.Kind, &n.PostID, &n.PostTitle, &n.PostSlug, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// MarkRead flips the read flag for the given ids, but only where the row
// belongs to recipientID. Ids owned by someone else are untouched.
func (s *Service) MarkRead(ctx context.Context, recipientID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `
		UPDATE notifications SET is_read = true
		WHERE id = ANY($1) AND user_id = $2
	`, ids, recipientID)
	return err
}

func (s *Service) publish(recipientID string, ev Event) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("notification event marshal: %v", err)
		return
	}
	s.hub.Broadcast(recipientID, payload)
}

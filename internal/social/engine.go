package social

import (
	"context"
	"log"

	"backend-blogapp/internal/notification"
)

// Notifier turns edge events into notification records.
type Notifier interface {
	Emit(ctx context.Context, recipientID, actorID, kind, postID string) error
}

// Engine composes the pure edge mutations with notification dispatch.
// A notification fires only when an edge was newly created, never for a
// repeated idempotent call, and never toward the actor themselves. The
// edge is the source of truth: a failed dispatch is logged, not rolled
// back.
type Engine struct {
	edges    *Service
	notifier Notifier
}

func NewEngine(edges *Service, notifier Notifier) *Engine {
	return &Engine{edges: edges, notifier: notifier}
}

func (e *Engine) Like(ctx context.Context, userID, postID string) error {
	created, err := e.edges.Like(ctx, userID, postID)
	if err != nil {
		return err
	}
	if created {
		e.notifyOwner(ctx, userID, postID, notification.KindLike)
	}
	return nil
}

func (e *Engine) Unlike(ctx context.Context, userID, postID string) error {
	return e.edges.Unlike(ctx, userID, postID)
}

func (e *Engine) Share(ctx context.Context, userID, postID string) error {
	created, err := e.edges.Share(ctx, userID, postID)
	if err != nil {
		return err
	}
	if created {
		e.notifyOwner(ctx, userID, postID, notification.KindShare)
	}
	return nil
}

func (e *Engine) Unshare(ctx context.Context, userID, postID string) error {
	return e.edges.Unshare(ctx, userID, postID)
}

func (e *Engine) Follow(ctx context.Context, followerID, followingID string) error {
	created, err := e.edges.Follow(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if created {
		if err := e.notifier.Emit(ctx, followingID, followerID, notification.KindFollow, ""); err != nil {
			log.Printf("follow %s->%s: emit notification: %v", followerID, followingID, err)
		}
	}
	return nil
}

func (e *Engine) Unfollow(ctx context.Context, followerID, followingID string) error {
	return e.edges.Unfollow(ctx, followerID, followingID)
}

func (e *Engine) notifyOwner(ctx context.Context, actorID, postID, kind string) {
	ownerID, err := e.edges.PostOwner(ctx, postID)
	if err != nil {
		log.Printf("%s %s: resolve post owner: %v", kind, postID, err)
		return
	}
	if ownerID == actorID {
		return
	}
	if err := e.notifier.Emit(ctx, ownerID, actorID, kind, postID); err != nil {
		log.Printf("%s %s: emit notification: %v", kind, postID, err)
	}
}

package social

import (
	"context"
	"errors"

	"backend-blogapp/internal/db"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrSelfFollow rejects a follow edge whose two ends are the same user.
var ErrSelfFollow = errors.New("cannot follow yourself")

// ErrNotFound reports an edge whose subject (post or user) does not exist.
var ErrNotFound = errors.New("subject not found")

func isMissingSubject(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// Service holds the pure edge mutations. Every insert is idempotent and
// reports whether a new edge was actually created, so callers can decide
// about side effects without re-checking the store.
type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Like(ctx context.Context, userID, postID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO post_likes (user_id, post_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, userID, postID)
	if err != nil {
		if isMissingSubject(err) {
			return false, ErrNotFound
		}
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Service) Unlike(ctx context.Context, userID, postID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM post_likes WHERE user_id = $1 AND post_id = $2
	`, userID, postID)
	return err
}

func (s *Service) Share(ctx context.Context, userID, postID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO post_shares (user_id, post_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, userID, postID)
	if err != nil {
		if isMissingSubject(err) {
			return false, ErrNotFound
		}
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Service) Unshare(ctx context.Context, userID, postID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM post_shares WHERE user_id = $1 AND post_id = $2
	`, userID, postID)
	return err
}

func (s *Service) Follow(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == followingID {
		return false, ErrSelfFollow
	}
	tag, err := s.db.Exec(ctx, `
		INSERT INTO follows (follower_id, following_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, followerID, followingID)
	if err != nil {
		if isMissingSubject(err) {
			return false, ErrNotFound
		}
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Service) Unfollow(ctx context.Context, followerID, followingID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM follows WHERE follower_id = $1 AND following_id = $2
	`, followerID, followingID)
	return err
}

func (s *Service) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2
		)
	`, followerID, followingID).Scan(&exists)
	return exists, err
}

func (s *Service) PostOwner(ctx context.Context, postID string) (string, error) {
	var ownerID string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM posts WHERE id = $1`, postID).Scan(&ownerID)
	return ownerID, err
}

func (s *Service) PostStats(ctx context.Context, postID string) (PostStats, error) {
	var stats PostStats
	if err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM post_likes WHERE post_id = $1
	`, postID).Scan(&stats.Likes); err != nil {
		return PostStats{}, err
	}
	if err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM post_shares WHERE post_id = $1
	`, postID).Scan(&stats.Shares); err != nil {
		return PostStats{}, err
	}
	return stats, nil
}

func (s *Service) UserStats(ctx context.Context, userID string) (UserStats, error) {
	var stats UserStats
	if err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM follows WHERE following_id = $1
	`, userID).Scan(&stats.Followers); err != nil {
		return UserStats{}, err
	}
	if err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM follows WHERE follower_id = $1
	`, userID).Scan(&stats.Following); err != nil {
		return UserStats{}, err
	}
	return stats, nil
}

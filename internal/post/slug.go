package post

import (
	"context"
	"strconv"
	"strings"
)

const slugFallback = "post"

// slugify lowercases the title, collapses every run of non-alphanumeric
// characters into a single dash and trims dashes at both ends.
func slugify(title string) string {
	var sb strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pending = false
			sb.WriteRune(r)
		default:
			pending = true
		}
	}
	if sb.Len() == 0 {
		return slugFallback
	}
	return sb.String()
}

// nextSlug picks the base itself when free, otherwise the smallest -N
// suffix not taken, scanning from 2. The result is only a candidate: the
// posts_slug_key constraint is what actually guarantees uniqueness, and
// the publisher retries on conflict.
func (s *Service) nextSlug(ctx context.Context, base string) (string, error) {
	rows, err := s.db.Query(ctx, `SELECT slug FROM posts WHERE slug LIKE $1`, base+"%")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	taken := map[string]bool{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return "", err
		}
		taken[slug] = true
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if !taken[base] {
		return base, nil
	}
	for i := 2; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if !taken[candidate] {
			return candidate, nil
		}
	}
}

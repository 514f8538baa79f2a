// Package social serves the read-only social trading feed.
package social

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/clients/platform"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Reader is the slice of the backend client this module needs.
type Reader interface {
	GetSocialFeed(ctx context.Context, limit, offset int) (*platform.SocialFeedResponse, error)
}

// Page is one page of the feed with the cursor for the next fetch.
type Page struct {
	Posts      []platform.SocialPost `json:"posts"`
	HasMore    bool                  `json:"has_more"`
	NextOffset int                   `json:"next_offset"`
}

// Service serves the social feed view.
type Service struct {
	client Reader
	log    zerolog.Logger
}

// NewService creates a new social feed service
func NewService(client Reader, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		log:    log.With().Str("service", "social").Logger(),
	}
}

// Feed returns one page of the social feed.
func (s *Service) Feed(ctx context.Context, limit, offset int) (*Page, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	response, err := s.client.GetSocialFeed(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	posts := response.Posts
	if posts == nil {
		posts = []platform.SocialPost{}
	}

	return &Page{
		Posts:      posts,
		HasMore:    response.HasMore,
		NextOffset: offset + len(posts),
	}, nil
}

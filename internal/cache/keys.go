package cache

import (
	"context"
	"fmt"
)

// Key families, used as the metrics label.
const (
	FamilyFeed       = "feed"
	FamilyAuthorFeed = "author_feed"
)

const (
	feedKey          = "feed:all"
	authorFeedPrefix = "feed:author:%d"
)

// FeedKey is the key of the global newest-first feed.
func FeedKey() string {
	return feedKey
}

// AuthorFeedKey is the key of one author's posts.
func AuthorFeedKey(authorID uint) string {
	return fmt.Sprintf(authorFeedPrefix, authorID)
}

// InvalidateFeeds drops the global feed and the feeds of the given authors.
func InvalidateFeeds(ctx context.Context, authorIDs ...uint) {
	keys := make([]string, 0, len(authorIDs)+1)
	keys = append(keys, FeedKey())
	for _, id := range authorIDs {
		keys = append(keys, AuthorFeedKey(id))
	}
	Invalidate(ctx, keys...)
}

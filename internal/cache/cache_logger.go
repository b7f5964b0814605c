package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateFormCache drops every cached view of a form: the owner view, the
// public view behind its share token and its submission aggregates.
func InvalidateFormCache(ctx context.Context, cm *CacheManager, formID uint, shareToken string) {
	SafeDelete(ctx, cm.Form, fmt.Sprintf("id:%d", formID))
	if shareToken != "" {
		SafeDelete(ctx, cm.Public, fmt.Sprintf("token:%s", shareToken))
	}
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("form:%d:*", formID))
}

// InvalidateSubmissionStats drops cached aggregates after a submission change.
func InvalidateSubmissionStats(ctx context.Context, cm *CacheManager, formID uint) {
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("form:%d:*", formID))
}

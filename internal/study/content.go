package study

import (
	"context"

	"github.com/rcliao/study-assistant/internal/model"
)

// SaveContent records a new content item and returns its id. Identical
// arguments still produce a new item.
func (s *Service) SaveContent(ctx context.Context, userID, filename, contentType, content string) string {
	item := model.ContentItem{
		ID:       s.newID(),
		User:     userID,
		Filename: filename,
		Type:     contentType,
		Content:  content,
		Created:  s.now(),
	}
	s.backend.Set(ctx, contentKey(item.ID), item, 0)
	s.backend.Push(ctx, userContentKey(userID), item, HistoryCap)
	return item.ID
}

// GetContent looks a content item up by id.
func (s *Service) GetContent(ctx context.Context, id string) (model.ContentItem, bool) {
	var item model.ContentItem
	ok := s.load(ctx, contentKey(id), &item)
	return item, ok
}

// UserContent returns up to limit content items, newest first.
func (s *Service) UserContent(ctx context.Context, userID string, limit int) []model.ContentItem {
	return loadList[model.ContentItem](ctx, s, userContentKey(userID), limit)
}

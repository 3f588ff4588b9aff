package service

import (
	"context"
	"fmt"
	"pbpbot/internal/core/domain"
	"pbpbot/internal/core/port"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// PageSize is the largest page the message history endpoint returns.
	PageSize = 100
	// BulkAgeLimit is the age past which messages can no longer be removed in bulk.
	BulkAgeLimit = 14 * 24 * time.Hour

	maxBulkDelete = 100
)

// Purger deletes the messages of one author from a channel history, newest first.
type Purger struct {
	Messages port.MessageStore

	// PageDelay is the pause between two history pages.
	PageDelay time.Duration
	// SingleDelay is the minimum spacing between two one-by-one deletions.
	SingleDelay time.Duration
	AgeLimit    time.Duration
	// OldAtBoundary routes a message exactly AgeLimit old to one-by-one deletion.
	OldAtBoundary bool
	// MinBulkSize is the smallest set of recent messages sent through the bulk call.
	MinBulkSize int

	now func() time.Time
}

type PurgeResult struct {
	Deleted int
	Failed  int
}

func NewPurger(messages port.MessageStore) *Purger {
	return &Purger{
		Messages:      messages,
		PageDelay:     500 * time.Millisecond,
		SingleDelay:   time.Second,
		AgeLimit:      BulkAgeLimit,
		OldAtBoundary: true,
		MinBulkSize:   2,
		now:           time.Now,
	}
}

// Purge removes up to count messages written by authorID in channelID. It stops once count is met or
// the history is exhausted, so fewer deletions than requested are not an error. The returned error
// reports a failed page fetch; the result still holds what was deleted before it.
func (p *Purger) Purge(ctx context.Context, channelID, authorID string, count int) (PurgeResult, error) {
	var result PurgeResult

	l := log.With().
		Str("channelId", channelID).
		Str("authorId", authorID).
		Logger()

	limiter := rate.NewLimiter(rate.Every(p.SingleDelay), 1)

	before := ""
	for result.Deleted < count {
		page, err := p.Messages.FetchMessages(ctx, channelID, PageSize, before)
		if err != nil {
			return result, fmt.Errorf("failed to fetch messages of channel %s: %w", channelID, err)
		}
		if len(page) == 0 {
			break
		}

		recent, old := p.partition(page, authorID, count-result.Deleted)
		l.Debug().Int("page", len(page)).Int("recent", len(recent)).Int("old", len(old)).Msg("fetched message page")

		if len(recent) >= max(p.MinBulkSize, 1) {
			p.deleteBulk(ctx, channelID, recent, limiter, &result)
		} else {
			p.deleteEach(ctx, channelID, recent, limiter, &result)
		}
		p.deleteEach(ctx, channelID, old, limiter, &result)

		if len(page) < PageSize || result.Deleted >= count {
			break
		}

		before = page[len(page)-1].ID
		if !sleep(ctx, p.PageDelay) {
			return result, ctx.Err()
		}
	}

	l.Debug().Int("deleted", result.Deleted).Int("failed", result.Failed).Msg("purge finished")
	return result, nil
}

// IsOld reports whether a message of the given age is past the bulk deletion window.
func (p *Purger) IsOld(age time.Duration) bool {
	if p.OldAtBoundary {
		return age >= p.AgeLimit
	}
	return age > p.AgeLimit
}

// partition keeps at most budget messages of authorID and splits them by the bulk age limit.
func (p *Purger) partition(page []domain.Message, authorID string, budget int) (recent, old []string) {
	now := p.now()
	for _, m := range page {
		if len(recent)+len(old) >= budget {
			break
		}
		if m.AuthorID != authorID {
			continue
		}
		if p.IsOld(now.Sub(m.CreatedAt)) {
			old = append(old, m.ID)
		} else {
			recent = append(recent, m.ID)
		}
	}
	return recent, old
}

func (p *Purger) deleteBulk(ctx context.Context, channelID string, ids []string, limiter *rate.Limiter, result *PurgeResult) {
	for start := 0; start < len(ids); start += maxBulkDelete {
		chunk := ids[start:min(start+maxBulkDelete, len(ids))]

		if err := p.Messages.DeleteBulk(ctx, channelID, chunk); err != nil {
			log.Warn().Err(err).Str("channelId", channelID).Int("messages", len(chunk)).
				Msg("bulk delete failed, deleting one by one")
			p.deleteEach(ctx, channelID, chunk, limiter, result)
			continue
		}
		result.Deleted += len(chunk)
	}
}

func (p *Purger) deleteEach(ctx context.Context, channelID string, ids []string, limiter *rate.Limiter, result *PurgeResult) {
	for _, id := range ids {
		if err := limiter.Wait(ctx); err != nil {
			result.Failed++
			continue
		}

		if err := p.Messages.DeleteOne(ctx, channelID, id); err != nil {
			log.Debug().Err(err).Str("channelId", channelID).Str("messageId", id).Msg("failed to delete message")
			result.Failed++
			continue
		}
		result.Deleted++
	}
}

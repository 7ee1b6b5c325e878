package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
)

const excerptRunes = 80

// ContentRepository maps reportable content of every type onto
// moderation.ContentItem.
type ContentRepository struct {
	db      *gorm.DB
	caps    moderation.Capabilities
	siteURL string
}

var _ moderation.ContentStore = (*ContentRepository)(nil)

func NewContentRepository(db *gorm.DB, caps moderation.Capabilities, siteURL string) *ContentRepository {
	return &ContentRepository{db: db, caps: caps, siteURL: strings.TrimRight(siteURL, "/")}
}

func tableFor(contentType string) string {
	switch contentType {
	case config.ContentPost, config.ContentQuestion:
		return database.TablePosts
	case config.ContentComment:
		return database.TableComments
	case config.ContentReview:
		return database.TableReviews
	}
	return ""
}

// Resolve finds content by id, or by slug for posts and questions.
func (r *ContentRepository) Resolve(ctx context.Context, contentType, ref string) (*moderation.ContentItem, error) {
	table := tableFor(contentType)
	if table == "" || !r.caps.Supports(table) || ref == "" {
		return nil, nil
	}
	id, idErr := uuid.Parse(ref)
	db := r.db.WithContext(ctx)

	var item *moderation.ContentItem
	var err error
	switch table {
	case database.TablePosts:
		var p models.Post
		q := db.Where("kind = ?", contentType)
		if idErr == nil {
			q = q.Where("id = ?", id)
		} else {
			q = q.Where("slug = ?", ref)
		}
		if err = q.First(&p).Error; err == nil {
			item = r.postItem(&p)
		}
	case database.TableComments:
		if idErr != nil {
			return nil, nil
		}
		var c models.Comment
		if err = db.Where("id = ?", id).First(&c).Error; err == nil {
			item = r.childItem(contentType, c.ID, c.PostID, c.AuthorID, c.Body, c.Hidden, c.ModerationStatus)
		}
	case database.TableReviews:
		if idErr != nil {
			return nil, nil
		}
		var rv models.Review
		if err = db.Where("id = ?", id).First(&rv).Error; err == nil {
			item = r.childItem(contentType, rv.ID, rv.PostID, rv.AuthorID, rv.Body, rv.Hidden, rv.ModerationStatus)
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve %s %q: %w", contentType, ref, err)
	}
	return item, nil
}

func (r *ContentRepository) postItem(p *models.Post) *moderation.ContentItem {
	author := p.AuthorID
	path := "posts"
	if p.Kind == models.KindQuestion {
		path = "questions"
	}
	return &moderation.ContentItem{
		Type:             p.Kind,
		ID:               p.ID.String(),
		Identifiers:      []string{p.ID.String(), p.Slug},
		Slug:             p.Slug,
		Title:            p.Title,
		AuthorID:         &author,
		Hidden:           p.Hidden,
		ModerationStatus: p.ModerationStatus,
		URL:              fmt.Sprintf("%s/%s/%s", r.siteURL, path, p.Slug),
	}
}

func (r *ContentRepository) childItem(contentType string, id, postID, authorID uuid.UUID, body string, hidden bool, status string) *moderation.ContentItem {
	return &moderation.ContentItem{
		Type:             contentType,
		ID:               id.String(),
		Identifiers:      []string{id.String()},
		Title:            excerpt(body),
		AuthorID:         &authorID,
		Hidden:           hidden,
		ModerationStatus: status,
		URL:              fmt.Sprintf("%s/posts/%s#%s-%s", r.siteURL, postID, contentType, id),
	}
}

func (r *ContentRepository) Hide(ctx context.Context, item *moderation.ContentItem) error {
	return r.setVisibility(ctx, item, true, models.ModerationHidden)
}

func (r *ContentRepository) Restore(ctx context.Context, item *moderation.ContentItem) error {
	return r.setVisibility(ctx, item, false, models.ModerationApproved)
}

func (r *ContentRepository) setVisibility(ctx context.Context, item *moderation.ContentItem, hidden bool, status string) error {
	table := tableFor(item.Type)
	if table == "" || !r.caps.Supports(table) {
		return nil
	}
	updates := map[string]interface{}{}
	if r.caps.Supports(table + ".hidden") {
		updates["hidden"] = hidden
	}
	if r.caps.Supports(table + ".moderation_status") {
		updates["moderation_status"] = status
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	err := r.db.WithContext(ctx).Table(table).
		Where("id = ? AND deleted_at IS NULL", item.ID).
		Updates(updates).Error
	if err != nil {
		return err
	}
	item.Hidden = hidden
	item.ModerationStatus = status
	return nil
}

func excerpt(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	if utf8.RuneCountInString(body) <= excerptRunes {
		return body
	}
	return string([]rune(body)[:excerptRunes]) + "…"
}

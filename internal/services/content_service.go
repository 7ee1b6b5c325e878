package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/textanalysis"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrUserMissing   = errors.New("user not found")
	ErrInvalidKind   = errors.New("kind must be post or question")
	ErrTitleRequired = errors.New("title is required")
	ErrTitleTooLong  = errors.New("title must be at most 200 characters")
	ErrBodyRequired  = errors.New("body is required")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrInvalidVote   = errors.New("vote must be -1, 0 or 1")
	ErrSelfFollow    = errors.New("cannot follow yourself")
)

const (
	maxTitleLen = 200
	maxSlugBase = 80
)

// ContentService handles posts, questions and the engagement around them.
// Every new piece of text is scored by the analyzer; flagged items start in
// the pending moderation state instead of approved.
type ContentService struct {
	db       *gorm.DB
	analyzer *textanalysis.Analyzer
	now      func() time.Time
}

func NewContentService(db *gorm.DB, analyzer *textanalysis.Analyzer) *ContentService {
	return &ContentService{db: db, analyzer: analyzer, now: time.Now}
}

func (s *ContentService) CreatePost(ctx context.Context, authorID uuid.UUID, req *dto.CreatePostRequest) (*dto.PostResponse, error) {
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	if kind == "" {
		kind = models.KindPost
	}
	if kind != models.KindPost && kind != models.KindQuestion {
		return nil, ErrInvalidKind
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if len([]rune(title)) > maxTitleLen {
		return nil, ErrTitleTooLong
	}
	body := strings.TrimSpace(req.Body)
	if body == "" && kind == models.KindPost {
		return nil, ErrBodyRequired
	}

	analysis := s.analyze(kind, body, textanalysis.Options{Title: title, Subtitle: req.Subtitle})
	post := &models.Post{
		ID:               uuid.New(),
		Kind:             kind,
		AuthorID:         authorID,
		Title:            title,
		Subtitle:         strings.TrimSpace(req.Subtitle),
		Body:             body,
		Status:           models.PostStatusPublished,
		ModerationStatus: moderationStatus(analysis),
		QualityScore:     analysis.Score,
		QualityFlagged:   analysis.Flagged,
	}
	post.Slug = Slugify(title, kind) + "-" + post.ID.String()[:8]
	if req.Draft {
		post.Status = models.PostStatusDraft
	} else {
		now := s.now().UTC()
		post.PublishedAt = &now
	}

	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &dto.PostResponse{Post: post, Analysis: &analysis}, nil
}

// GetPost looks a post up by id or slug. Hidden posts are reported as missing.
func (s *ContentService) GetPost(ctx context.Context, ref string) (*models.Post, error) {
	var post models.Post
	db := s.db.WithContext(ctx)
	if id, err := uuid.Parse(ref); err == nil {
		db = db.Where("id = ?", id)
	} else {
		db = db.Where("slug = ?", ref)
	}
	if err := db.First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.Hidden || post.ModerationStatus == models.ModerationHidden {
		return nil, ErrPostNotFound
	}
	return &post, nil
}

func (s *ContentService) AddComment(ctx context.Context, authorID uuid.UUID, ref string, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, ErrBodyRequired
	}
	post, err := s.GetPost(ctx, ref)
	if err != nil {
		return nil, err
	}

	analysis := s.analyze(config.ContentComment, body, textanalysis.Options{})
	comment := &models.Comment{
		PostID:           post.ID,
		AuthorID:         authorID,
		Body:             body,
		ModerationStatus: moderationStatus(analysis),
		QualityScore:     analysis.Score,
		QualityFlagged:   analysis.Flagged,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &dto.CommentResponse{Comment: comment, Analysis: &analysis}, nil
}

func (s *ContentService) AddReview(ctx context.Context, authorID uuid.UUID, ref string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	post, err := s.GetPost(ctx, ref)
	if err != nil {
		return nil, err
	}

	body := strings.TrimSpace(req.Body)
	review := &models.Review{
		PostID:           post.ID,
		AuthorID:         authorID,
		Rating:           req.Rating,
		Body:             body,
		ModerationStatus: models.ModerationApproved,
	}
	resp := &dto.ReviewResponse{Review: review}
	// a bare star rating has no text to judge
	if body != "" {
		analysis := s.analyze(config.ContentReview, body, textanalysis.Options{})
		review.ModerationStatus = moderationStatus(analysis)
		review.QualityScore = analysis.Score
		review.QualityFlagged = analysis.Flagged
		resp.Analysis = &analysis
	}
	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return resp, nil
}

// Vote records an up (1) or down (-1) vote; 0 withdraws the caller's vote.
func (s *ContentService) Vote(ctx context.Context, userID uuid.UUID, ref string, value int) error {
	if value < -1 || value > 1 {
		return ErrInvalidVote
	}
	post, err := s.GetPost(ctx, ref)
	if err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	if value == 0 {
		return db.Where("user_id = ? AND post_id = ?", userID, post.ID).Delete(&models.Vote{}).Error
	}
	vote := &models.Vote{UserID: userID, PostID: post.ID, Value: value}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(vote).Error
}

// ToggleSave bookmarks the post, or removes an existing bookmark.
func (s *ContentService) ToggleSave(ctx context.Context, userID uuid.UUID, ref string) (bool, error) {
	post, err := s.GetPost(ctx, ref)
	if err != nil {
		return false, err
	}
	db := s.db.WithContext(ctx)
	res := db.Where("user_id = ? AND post_id = ?", userID, post.ID).Delete(&models.Save{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}
	if err := db.Create(&models.Save{UserID: userID, PostID: post.ID}).Error; err != nil {
		return false, err
	}
	return true, nil
}

// ToggleFollow follows targetID, or unfollows when already following.
func (s *ContentService) ToggleFollow(ctx context.Context, followerID, targetID uuid.UUID) (bool, error) {
	if followerID == targetID {
		return false, ErrSelfFollow
	}
	db := s.db.WithContext(ctx)
	var target models.User
	if err := db.Select("id").First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserMissing
		}
		return false, err
	}

	res := db.Where("follower_id = ? AND followee_id = ?", followerID, targetID).Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}
	if err := db.Create(&models.Follow{FollowerID: followerID, FolloweeID: targetID}).Error; err != nil {
		return false, err
	}
	return true, nil
}

// Analyze runs the text heuristics without storing anything.
func (s *ContentService) Analyze(contentType, title, subtitle, body string) textanalysis.Result {
	return s.analyze(contentType, body, textanalysis.Options{Title: title, Subtitle: subtitle})
}

func (s *ContentService) analyze(contentType, body string, opts textanalysis.Options) textanalysis.Result {
	opts.ContentType = contentType
	res := s.analyzer.Analyze(body, opts)
	metrics.TextAnalyses.WithLabelValues(contentType, res.Status).Inc()
	return res
}

func moderationStatus(res textanalysis.Result) string {
	if res.Flagged {
		return models.ModerationPending
	}
	return models.ModerationApproved
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases title, folds accents and joins words with dashes.
// fallback is used when nothing printable is left.
func Slugify(title, fallback string) string {
	folded, _, err := transform.String(stripMarks, title)
	if err != nil {
		folded = title
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= maxSlugBase {
			break
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugBase {
		slug = strings.Trim(slug[:maxSlugBase], "-")
	}
	if slug == "" {
		return fallback
	}
	return slug
}

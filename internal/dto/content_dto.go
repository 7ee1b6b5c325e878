package dto

import (
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/textanalysis"
)

type CreatePostRequest struct {
	Kind     string `json:"kind"` // post or question
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Body     string `json:"body"`
	Draft    bool   `json:"draft"`
}

type CreateCommentRequest struct {
	Body string `json:"body"`
}

type CreateReviewRequest struct {
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

type VoteRequest struct {
	Value int `json:"value"`
}

// PostResponse wraps a post with the quality check it received at submission.
type PostResponse struct {
	Post     *models.Post         `json:"post"`
	Analysis *textanalysis.Result `json:"analysis,omitempty"`
}

type CommentResponse struct {
	Comment  *models.Comment      `json:"comment"`
	Analysis *textanalysis.Result `json:"analysis,omitempty"`
}

type ReviewResponse struct {
	Review   *models.Review       `json:"review"`
	Analysis *textanalysis.Result `json:"analysis,omitempty"`
}

type ToggleResponse struct {
	Active bool `json:"active"`
}

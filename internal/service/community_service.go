package service

import (
	"context"

	"hackarena/internal/models"
	"hackarena/internal/repository"
)

// CommunityService handles forum posts, comments, likes, and moderation
// reports. Ownership checks happen here, never in the client.
type CommunityService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

// CreatePostInput carries a new post.
type CreatePostInput struct {
	UserID  uint
	Title   string
	Content string
}

// UpdatePostInput carries a post edit.
type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Title   string
	Content string
}

// ListPostsInput selects a post page.
type ListPostsInput struct {
	Limit         int
	Offset        int
	CurrentUserID uint
	Sort          string
}

// NewCommunityService returns a new CommunityService. isAdmin resolves
// whether a user may moderate content they do not own.
func NewCommunityService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommunityService {
	return &CommunityService{postRepo: postRepo, commentRepo: commentRepo, isAdmin: isAdmin}
}

const (
	maxPostTitleLen   = 200
	maxPostContentLen = 20000
	maxCommentLen     = 2000
)

func (s *CommunityService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Post title is required")
	}
	if len(in.Title) > maxPostTitleLen {
		return nil, models.NewValidationError("Post title too long (max 200 characters)")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Post content is required")
	}
	if len(in.Content) > maxPostContentLen {
		return nil, models.NewValidationError("Post content too long")
	}

	post := &models.Post{
		Title:   in.Title,
		Content: in.Content,
		UserID:  in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *CommunityService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, currentUserID)
}

func (s *CommunityService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	return s.postRepo.List(ctx, in.Limit, in.Offset, in.CurrentUserID, in.Sort)
}

func (s *CommunityService) SearchPosts(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.postRepo.Search(ctx, query, limit, offset, currentUserID)
}

// UpdatePost edits a post. Only the author may edit; admins moderate by
// deletion, not by rewriting other people's words.
func (s *CommunityService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if in.Title != "" {
		if len(in.Title) > maxPostTitleLen {
			return nil, models.NewValidationError("Post title too long (max 200 characters)")
		}
		post.Title = in.Title
	}
	if in.Content != "" {
		if len(in.Content) > maxPostContentLen {
			return nil, models.NewValidationError("Post content too long")
		}
		post.Content = in.Content
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post. The author or an admin may delete.
func (s *CommunityService) DeletePost(ctx context.Context, postID, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own posts")
		}
	}
	return s.postRepo.Delete(ctx, postID)
}

func (s *CommunityService) LikePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return err
	}
	return s.postRepo.Like(ctx, userID, postID)
}

func (s *CommunityService) UnlikePost(ctx context.Context, userID, postID uint) error {
	return s.postRepo.Unlike(ctx, userID, postID)
}

func (s *CommunityService) CreateComment(ctx context.Context, userID, postID uint, content string) (*models.Comment, error) {
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, UserID: userID, Content: content}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommunityService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	return s.commentRepo.GetByPostID(ctx, postID, limit, offset)
}

// DeleteComment removes a comment. The author or an admin may delete.
func (s *CommunityService) DeleteComment(ctx context.Context, commentID, userID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own comments")
		}
	}
	return s.commentRepo.Delete(ctx, commentID)
}

// ReportPost files a moderation report against a post.
func (s *CommunityService) ReportPost(ctx context.Context, reporterID, postID uint, reason string) (*models.PostReport, error) {
	if reason == "" {
		return nil, models.NewValidationError("Report reason is required")
	}
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}

	report := &models.PostReport{
		PostID:     postID,
		ReporterID: reporterID,
		Reason:     reason,
		Status:     models.ReportOpen,
	}
	if err := s.postRepo.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports returns moderation reports, optionally filtered by status.
func (s *CommunityService) ListReports(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.PostReport, error) {
	if status != "" {
		switch status {
		case models.ReportOpen, models.ReportResolved, models.ReportDismissed:
		default:
			return nil, models.NewValidationError("Unknown report status")
		}
	}
	return s.postRepo.ListReports(ctx, status, limit, offset)
}

// ResolveReport closes a report as resolved or dismissed.
func (s *CommunityService) ResolveReport(ctx context.Context, reportID, adminID uint, status models.ReportStatus) (*models.PostReport, error) {
	if status != models.ReportResolved && status != models.ReportDismissed {
		return nil, models.NewValidationError("Report can only be resolved or dismissed")
	}

	report, err := s.postRepo.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportOpen {
		return nil, models.NewValidationError("Report is already closed")
	}

	report.Status = status
	report.ResolvedBy = &adminID
	if err := s.postRepo.UpdateReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hackarena/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	updateStatusFn  func(context.Context, uint, models.UserStatus) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdateStatus(ctx context.Context, id uint, status models.UserStatus) error {
	return s.updateStatusFn(ctx, id, status)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(context.Context, uint) (*models.User, error) { return nil, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
		updateFn:        func(context.Context, *models.User) error { return nil },
		updateStatusFn:  func(context.Context, uint, models.UserStatus) error { return nil },
		deleteFn:        func(context.Context, uint) error { return nil },
		listFn:          func(context.Context, int, int) ([]models.User, error) { return nil, nil },
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("display name too long", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		}
		svc := NewUserService(repo)
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			UserID:      1,
			DisplayName: strings.Repeat("x", 51),
		})
		assertValidationError(t, err)
	})

	t.Run("empty fields are left unchanged", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, DisplayName: "Neo", Avatar: "/a.png"}, nil
		}
		var saved *models.User
		repo.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		svc := NewUserService(repo)
		user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			UserID: 1,
			Avatar: "/b.png",
		})
		require.NoError(t, err)
		assert.Equal(t, "Neo", user.DisplayName)
		assert.Equal(t, "/b.png", user.Avatar)
		require.NotNil(t, saved)
	})

	t.Run("update error propagates", func(t *testing.T) {
		t.Parallel()
		repoErr := errors.New("update failed")
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		}
		repo.updateFn = func(context.Context, *models.User) error { return repoErr }
		svc := NewUserService(repo)
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Avatar: "/x.png"})
		assert.ErrorIs(t, err, repoErr)
	})
}

func TestUserService_SetRole(t *testing.T) {
	t.Parallel()

	t.Run("unknown role rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.SetRole(context.Background(), 1, "overlord")
		assertValidationError(t, err)
	})

	t.Run("role persisted", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleUser}, nil
		}
		var saved *models.User
		repo.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		svc := NewUserService(repo)
		user, err := svc.SetRole(context.Background(), 1, models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, user.Role)
		require.NotNil(t, saved)
		assert.Equal(t, models.RoleAdmin, saved.Role)
	})
}

func TestUserService_GetUserByUsername(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		if username == "neo" {
			return &models.User{ID: 1, Username: "neo"}, nil
		}
		return nil, nil
	}
	svc := NewUserService(repo)

	user, err := svc.GetUserByUsername(context.Background(), "neo")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	_, err = svc.GetUserByUsername(context.Background(), "ghost")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestUserService_ValidateNewUser(t *testing.T) {
	t.Parallel()
	svc := NewUserService(noopUserRepo())

	assert.NoError(t, svc.ValidateNewUser("neo_1", "neo@example.com", "SecurePass12!@"))
	assertValidationError(t, svc.ValidateNewUser("x", "neo@example.com", "SecurePass12!@"))
	assertValidationError(t, svc.ValidateNewUser("neo_1", "not-an-email", "SecurePass12!@"))
	assertValidationError(t, svc.ValidateNewUser("neo_1", "neo@example.com", "short"))
}

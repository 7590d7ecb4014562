package repository

import (
	"context"
	"errors"

	"hackarena/internal/cache"
	"hackarena/internal/models"

	"gorm.io/gorm"
)

// BannerRepository persists homepage banners.
type BannerRepository interface {
	Create(ctx context.Context, banner *models.Banner) error
	GetByID(ctx context.Context, id uint) (*models.Banner, error)
	Update(ctx context.Context, banner *models.Banner) error
	Delete(ctx context.Context, id uint) error
	ListActive(ctx context.Context) ([]models.Banner, error)
	List(ctx context.Context, limit, offset int) ([]models.Banner, error)
}

type bannerRepository struct {
	db *gorm.DB
}

// NewBannerRepository returns a new BannerRepository implementation.
func NewBannerRepository(db *gorm.DB) BannerRepository {
	return &bannerRepository{db: db}
}

func (r *bannerRepository) Create(ctx context.Context, banner *models.Banner) error {
	if err := r.db.WithContext(ctx).Create(banner).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBanners(ctx)
	return nil
}

func (r *bannerRepository) GetByID(ctx context.Context, id uint) (*models.Banner, error) {
	var banner models.Banner
	if err := r.db.WithContext(ctx).First(&banner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Banner", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &banner, nil
}

func (r *bannerRepository) Update(ctx context.Context, banner *models.Banner) error {
	if err := r.db.WithContext(ctx).Save(banner).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBanners(ctx)
	return nil
}

func (r *bannerRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Banner{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBanners(ctx)
	return nil
}

func (r *bannerRepository) ListActive(ctx context.Context) ([]models.Banner, error) {
	var banners []models.Banner
	err := cache.Aside(ctx, cache.ActiveBannersKey(), &banners, cache.BannersTTL, func() error {
		return r.db.WithContext(ctx).
			Where("is_active = ?", true).
			Order("position ASC, id ASC").
			Find(&banners).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return banners, nil
}

func (r *bannerRepository) List(ctx context.Context, limit, offset int) ([]models.Banner, error) {
	var banners []models.Banner
	err := r.db.WithContext(ctx).
		Order("position ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&banners).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return banners, nil
}

package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/quota"
	"github.com/3Eeeecho/memoryshare/internal/pkg/slug"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
	"github.com/3Eeeecho/memoryshare/internal/repositories"
)

type SpaceService interface {
	CreateSpace(ctx context.Context, req *models.CreateSpaceRequest) (*models.Space, error)
	CheckSlug(ctx context.Context, urlSlug string) (*models.SlugCheckResult, error)
	GetSpaceByID(ctx context.Context, spaceID string) (*models.Space, error)
	GetSpaceBySlug(ctx context.Context, urlSlug string) (*models.Space, error)
	GetSpaceByUserID(ctx context.Context, userID string) (*models.Space, error)
	// UpdateVisibility 仅空间所有者可以修改，重复设置同一个值是幂等的
	UpdateVisibility(ctx context.Context, userID, spaceID string, isPublic bool) (*models.Space, error)
	GetUsage(ctx context.Context, spaceID string) (*models.SpaceUsage, error)
}

type spaceService struct {
	spaceRepo repositories.SpaceRepository
	mediaRepo repositories.MediaRepository
	now       func() time.Time
}

func NewSpaceService(spaceRepo repositories.SpaceRepository, mediaRepo repositories.MediaRepository) SpaceService {
	return &spaceService{spaceRepo: spaceRepo, mediaRepo: mediaRepo, now: time.Now}
}

func (s *spaceService) CreateSpace(ctx context.Context, req *models.CreateSpaceRequest) (*models.Space, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("space service: %w", xerr.ErrUnauthorized)
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" || req.EventDate.IsZero() {
		return nil, fmt.Errorf("space service: %w", xerr.ErrValidationFailed)
	}

	base, err := slug.Slugify(req.URLSlug, slug.FromNames(req.FirstName, req.PartnerFirstName, req.EventDate))
	if err != nil {
		return nil, fmt.Errorf("space service: %w", xerr.ErrInvalidSlug)
	}
	available, err := s.firstAvailable(ctx, base)
	if err != nil {
		return nil, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	space := &models.Space{
		ID:               uuid.NewString(),
		URLSlug:          available,
		UserID:           req.UserID,
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		PartnerFirstName: strings.TrimSpace(req.PartnerFirstName),
		PartnerLastName:  strings.TrimSpace(req.PartnerLastName),
		EventDate:        req.EventDate.UTC(),
		EventType:        strings.TrimSpace(req.EventType),
		IsPublic:         isPublic,
		Plan:             string(quota.Normalize(req.Plan)),
	}

	if err := s.spaceRepo.Create(ctx, space); err != nil {
		if errors.Is(err, xerr.ErrSlugTaken) {
			// 检查和插入之间被别人抢先，唯一索引兜底
			suggestion, findErr := s.firstAvailable(ctx, base)
			if findErr != nil {
				logger.Error("CreateSpace: 计算建议 slug 失败", zap.String("urlSlug", available), zap.Error(findErr))
				suggestion = slug.Timestamped(base, s.now())
			}
			logger.Warn("CreateSpace: slug 在插入时冲突", zap.String("urlSlug", available), zap.String("suggested", suggestion))
			return nil, &SlugTakenError{Slug: available, SuggestedSlug: suggestion}
		}
		return nil, fmt.Errorf("space service: %w: %w", xerr.ErrDatabaseError, err)
	}
	logger.Info("CreateSpace: 空间创建成功",
		zap.String("spaceID", space.ID),
		zap.String("urlSlug", space.URLSlug),
		zap.String("userID", space.UserID),
		zap.String("plan", space.Plan))
	return space, nil
}

// firstAvailable 依次尝试 base, base1..base20, base<时间戳>
func (s *spaceService) firstAvailable(ctx context.Context, base string) (string, error) {
	candidates := slug.Candidates(base, s.now())
	for _, candidate := range candidates {
		taken, err := s.spaceRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("space service: %w: %w", xerr.ErrDatabaseError, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	// 时间戳候选也被占用时直接返回它，由唯一索引决定
	return candidates[len(candidates)-1], nil
}

func (s *spaceService) CheckSlug(ctx context.Context, urlSlug string) (*models.SlugCheckResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(urlSlug))
	if !slug.Valid(normalized) {
		return nil, fmt.Errorf("space service: %w", xerr.ErrInvalidSlug)
	}
	taken, err := s.spaceRepo.SlugExists(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("space service: %w: %w", xerr.ErrDatabaseError, err)
	}
	if !taken {
		return &models.SlugCheckResult{Available: true, Message: "URL is available"}, nil
	}
	suggestion, err := s.firstAvailable(ctx, normalized)
	if err != nil {
		return nil, err
	}
	return &models.SlugCheckResult{
		Available:     false,
		Message:       "URL is already taken",
		SuggestedSlug: suggestion,
	}, nil
}

func (s *spaceService) GetSpaceByID(ctx context.Context, spaceID string) (*models.Space, error) {
	return s.spaceRepo.FindByID(ctx, spaceID)
}

func (s *spaceService) GetSpaceBySlug(ctx context.Context, urlSlug string) (*models.Space, error) {
	return s.spaceRepo.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(urlSlug)))
}

func (s *spaceService) GetSpaceByUserID(ctx context.Context, userID string) (*models.Space, error) {
	return s.spaceRepo.FindByUserID(ctx, userID)
}

func (s *spaceService) UpdateVisibility(ctx context.Context, userID, spaceID string, isPublic bool) (*models.Space, error) {
	space, err := s.spaceRepo.FindByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if space.UserID != userID {
		logger.Warn("UpdateVisibility: 非所有者尝试修改空间", zap.String("spaceID", spaceID), zap.String("userID", userID))
		return nil, fmt.Errorf("space service: %w", xerr.ErrPermissionDenied)
	}
	if space.IsPublic == isPublic {
		return space, nil
	}
	return s.spaceRepo.UpdateVisibility(ctx, spaceID, isPublic)
}

func (s *spaceService) GetUsage(ctx context.Context, spaceID string) (*models.SpaceUsage, error) {
	space, err := s.spaceRepo.FindByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	count, err := s.mediaRepo.CountBySpace(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("space service: %w: %w", xerr.ErrDatabaseError, err)
	}
	used, err := s.mediaRepo.SumSizeBySpace(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("space service: %w: %w", xerr.ErrDatabaseError, err)
	}
	limits := quota.Resolve(space.Plan)
	return &models.SpaceUsage{
		Plan:     string(quota.Normalize(space.Plan)),
		Count:    count,
		Bytes:    used,
		MaxCount: limits.MaxCount,
		MaxBytes: limits.MaxBytes,
	}, nil
}

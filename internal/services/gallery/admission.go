package gallery

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/lock"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/metrics"
	"github.com/3Eeeecho/memoryshare/internal/pkg/quota"
	"github.com/3Eeeecho/memoryshare/internal/pkg/storage"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
	"github.com/3Eeeecho/memoryshare/internal/repositories"
)

// sniffLen mimetype 判断类型需要的头部字节数
const sniffLen = 3072

type AdmissionService interface {
	// Admit 在配额允许的前提下把文件写入对象存储并记录元数据。
	// 失败时返回 *AdmissionError，media 表保持不变
	Admit(ctx context.Context, req *models.UploadRequest) (*models.Media, error)
}

type AdmissionDeps struct {
	Locker     lock.Locker
	LockWait   time.Duration // 等待空间锁的最长时间
	RootFolder string
	Now        func() time.Time
}

type admissionService struct {
	tm        TransactionManager
	spaceRepo repositories.SpaceRepository
	mediaRepo repositories.MediaRepository
	store     storage.ObjectStore
	deps      AdmissionDeps
}

func NewAdmissionService(
	tm TransactionManager,
	spaceRepo repositories.SpaceRepository,
	mediaRepo repositories.MediaRepository,
	store storage.ObjectStore,
	deps AdmissionDeps,
) AdmissionService {
	if deps.Locker == nil {
		deps.Locker = lock.NewLocalLocker()
	}
	if deps.LockWait <= 0 {
		deps.LockWait = 30 * time.Second
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &admissionService{
		tm:        tm,
		spaceRepo: spaceRepo,
		mediaRepo: mediaRepo,
		store:     store,
		deps:      deps,
	}
}

func (s *admissionService) Admit(ctx context.Context, req *models.UploadRequest) (*models.Media, error) {
	media, err := s.admit(ctx, req)
	if err != nil {
		result := "error"
		var ae *AdmissionError
		if errors.As(err, &ae) {
			result = string(ae.Reason)
		}
		metrics.UploadAdmissions.WithLabelValues(result).Inc()
		return nil, err
	}
	metrics.UploadAdmissions.WithLabelValues("admitted").Inc()
	metrics.UploadBytes.Observe(float64(media.FileSize))
	return media, nil
}

func (s *admissionService) admit(ctx context.Context, req *models.UploadRequest) (*models.Media, error) {
	if req == nil || req.Reader == nil {
		return nil, reject(ReasonNoFile, xerr.ErrNoFile)
	}
	log := logger.With(zap.String("spaceID", req.SpaceID), zap.String("fileName", req.FileName))

	body, contentType := sniff(req.Reader, req.ContentType)
	uploadedBy := strings.TrimSpace(req.UploadedBy)
	if uploadedBy == "" {
		uploadedBy = models.DefaultUploader
	}

	// 同一空间的“统计-判断-写入”必须串行，否则并发上传会一起通过配额检查
	lockCtx, cancel := context.WithTimeout(ctx, s.deps.LockWait)
	unlock, err := s.deps.Locker.Lock(lockCtx, lock.SpaceKey(req.SpaceID))
	cancel()
	if err != nil {
		log.Warn("Admit: 获取空间锁失败", zap.Error(err))
		return nil, reject(ReasonBusy, fmt.Errorf("%w: %w", xerr.ErrTooManyRequests, err))
	}
	defer unlock()

	var (
		uploaded *storage.Object
		media    *models.Media
	)
	txErr := s.tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		space, err := s.spaceRepo.WithTx(tx).FindByID(ctx, req.SpaceID)
		if err != nil {
			if errors.Is(err, xerr.ErrSpaceNotFound) {
				return reject(ReasonSpaceNotFound, err)
			}
			return reject(ReasonPersistFailed, fmt.Errorf("%w: %w", xerr.ErrDatabaseError, err))
		}

		limits := quota.Resolve(space.Plan)
		mediaTx := s.mediaRepo.WithTx(tx)
		count, err := mediaTx.CountBySpace(ctx, space.ID)
		if err != nil {
			return reject(ReasonPersistFailed, fmt.Errorf("%w: %w", xerr.ErrDatabaseError, err))
		}
		used, err := mediaTx.SumSizeBySpace(ctx, space.ID)
		if err != nil {
			return reject(ReasonPersistFailed, fmt.Errorf("%w: %w", xerr.ErrDatabaseError, err))
		}

		if err := limits.Admit(count, used, req.Size); err != nil {
			log.Info("Admit: 超出套餐配额",
				zap.String("plan", space.Plan),
				zap.Int64("count", count),
				zap.Int64("used", used),
				zap.Int64("size", req.Size))
			if errors.Is(err, xerr.ErrCountExceeded) {
				return reject(ReasonCountExceeded, err)
			}
			return reject(ReasonStorageExceeded, err)
		}

		obj, err := s.store.Upload(ctx, storage.UploadInput{
			Folder:      storage.SpaceFolder(s.deps.RootFolder, space.ID),
			FileName:    req.FileName,
			Reader:      body,
			Size:        req.Size,
			ContentType: contentType,
		})
		if err != nil {
			log.Error("Admit: 上传对象存储失败", zap.String("store", s.store.Name()), zap.Error(err))
			return reject(ReasonStoreFailed, fmt.Errorf("%w: %w", xerr.ErrStorageError, err))
		}
		uploaded = obj

		kind := obj.Kind
		if kind == "" {
			kind = storage.KindOf(contentType)
		}
		media = &models.Media{
			ID:          uuid.NewString(),
			SpaceID:     space.ID,
			FileName:    req.FileName,
			FileURL:     obj.URL,
			FileType:    kind,
			FileSize:    req.Size,
			ContentType: contentType,
			StorageKey:  obj.Key,
			UploadedBy:  uploadedBy,
			UploadedAt:  s.deps.Now().UTC(),
		}
		if err := mediaTx.Create(ctx, media); err != nil {
			return reject(ReasonPersistFailed, fmt.Errorf("%w: %w", xerr.ErrDatabaseError, err))
		}
		return nil
	})
	if txErr == nil {
		log.Info("Admit: 上传成功", zap.String("mediaID", media.ID), zap.Int64("size", media.FileSize))
		return media, nil
	}

	// 对象已写入但元数据没有落库 (插入或提交失败)，删除对象
	if uploaded != nil {
		s.compensate(log, uploaded)
	}

	var ae *AdmissionError
	if errors.As(txErr, &ae) {
		return nil, ae
	}
	log.Error("Admit: 提交事务失败", zap.Error(txErr))
	return nil, reject(ReasonPersistFailed, fmt.Errorf("%w: %w", xerr.ErrDatabaseError, txErr))
}

// compensate 尽力删除孤儿对象，失败只记录日志，不影响返回给客户端的结果
func (s *admissionService) compensate(log *zap.Logger, obj *storage.Object) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ref := storage.ObjectRef{Key: obj.Key, URL: obj.URL, Kind: obj.Kind}
	if err := s.store.Delete(ctx, ref); err != nil {
		metrics.OrphanedObjects.Inc()
		log.Error("Admit: 补偿删除对象失败，对象成为孤儿", zap.String("key", obj.Key), zap.String("url", obj.URL), zap.Error(err))
		return
	}
	log.Warn("Admit: 元数据写入失败，已删除刚上传的对象", zap.String("key", obj.Key))
}

// sniff 客户端没有给出具体类型时根据文件头判断，返回的 reader 仍包含完整内容
func sniff(r io.Reader, declared string) (io.Reader, string) {
	declared = strings.TrimSpace(declared)
	if declared != "" && !strings.HasPrefix(declared, "application/octet-stream") {
		return r, declared
	}
	br := bufio.NewReaderSize(r, sniffLen)
	head, _ := br.Peek(sniffLen)
	return br, mimetype.Detect(head).String()
}

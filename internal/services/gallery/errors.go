package gallery

import (
	"fmt"

	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
)

// Reason 上传被拒绝的原因，返回给客户端用于区分处理
type Reason string

const (
	ReasonNoFile          Reason = "no-file"
	ReasonSpaceNotFound   Reason = "space-not-found"
	ReasonCountExceeded   Reason = "count-exceeded"
	ReasonStorageExceeded Reason = "storage-exceeded"
	ReasonStoreFailed     Reason = "store-failed"
	ReasonPersistFailed   Reason = "persist-failed"
	// ReasonBusy 等待空间锁超时
	ReasonBusy Reason = "busy"
)

// AdmissionError 准入失败。Err 包含 xerr 中对应的哨兵错误
type AdmissionError struct {
	Reason Reason
	Err    error
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("upload rejected (%s): %v", e.Reason, e.Err)
}

func (e *AdmissionError) Unwrap() error {
	return e.Err
}

func reject(reason Reason, err error) *AdmissionError {
	return &AdmissionError{Reason: reason, Err: err}
}

// SlugTakenError 创建空间时 slug 已被占用，附带一个当前可用的建议值
type SlugTakenError struct {
	Slug          string
	SuggestedSlug string
}

func (e *SlugTakenError) Error() string {
	return fmt.Sprintf("slug %q is taken", e.Slug)
}

func (e *SlugTakenError) Unwrap() error {
	return xerr.ErrSlugTaken
}

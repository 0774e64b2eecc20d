package quota

import "github.com/3Eeeecho/memoryshare/internal/pkg/xerr"

// 与 xerr 中的哨兵错误保持同一实例，上层可以直接 errors.Is(err, xerr.ErrCountExceeded)
var (
	ErrCountExceeded   = xerr.ErrCountExceeded
	ErrStorageExceeded = xerr.ErrStorageExceeded
)

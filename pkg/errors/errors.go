// Package errors 跨层共享的哨兵错误
package errors

import "errors"

// ErrOptimisticLock 版本号不匹配：记录已被其他请求修改。
// 由 TA 分配工时与用户信息的受控更新返回，handler 映射为 409（30003 / 20010）
var ErrOptimisticLock = errors.New("record was modified by another request, please reload and retry")

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"headta/backend/internal/service"
	"headta/backend/pkg/response"
	"headta/backend/pkg/semester"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	return s, true
}

// OptionalSemester 解析可选的 ?semester= 参数，缺省时返回 nil。
// 解析失败时已写入 400 响应，调用方应在 ok=false 时直接 return。
func OptionalSemester(c *gin.Context) (*semester.Semester, bool) {
	text := c.Query("semester")
	if text == "" {
		return nil, true
	}
	term, err := semester.Parse(text)
	if err != nil {
		writeSemesterError(c, err)
		return nil, false
	}
	return &term, true
}

// writeSemesterError 学期文本与区间错误 → 400，其余返回 false 交给调用方处理
func writeSemesterError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, semester.ErrInvalidFormat):
		response.ErrorWithDetails(c, http.StatusBadRequest, 10101, "invalid semester format, expected \"<Season> <Year>\"", err.Error())
	case errors.Is(err, semester.ErrInvalidSeason):
		response.ErrorWithDetails(c, http.StatusBadRequest, 10102, "invalid season, expected spring, summer or fall", err.Error())
	case errors.Is(err, semester.ErrInvalidYear):
		response.ErrorWithDetails(c, http.StatusBadRequest, 10103, "invalid semester year", err.Error())
	case errors.Is(err, service.ErrSemesterRangeInvalid):
		response.BadRequest(c, 10104, err.Error())
	case errors.Is(err, service.ErrSemesterRangeTooWide):
		response.BadRequest(c, 10105, err.Error())
	default:
		return false
	}
	return true
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"headta/backend/internal/dto"
	"headta/backend/internal/model"
	"headta/backend/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailExists    = errors.New("email is already registered")
	ErrUserSelfDelete = errors.New("cannot delete yourself")
	ErrUserSelfRole   = errors.New("cannot change your own role")
)

// UserService 用户业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	ParseImportFile(reader io.Reader) ([]ImportUserRow, error)
	ImportUsers(ctx context.Context, rows []ImportUserRow, callerID string) (*dto.ImportUserResponse, error)
}

// ImportUserRow Excel 导入解析后的单行数据
type ImportUserRow struct {
	Row       int
	FirstName string
	LastName  string
	Email     string
	GradYear  string
}

type userService struct {
	repo   *repository.Repository
	cache  SuggestionCache
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
//
//	推荐结果依赖用户的存在、角色与毕业年份，任何成功的用户写入都会清空推荐缓存；cache 可为 nil
func NewUserService(repo *repository.Repository, cache SuggestionCache, logger *zap.Logger) UserService {
	return &userService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleHeadTA
	}
	user := &model.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Role:      role,
		GradYear:  req.GradYear,
	}
	user.CreatedByUser(callerID)

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	invalidateSuggestions(ctx, s.cache, s.logger)
	return toUserResponse(user), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, repository.UserFilter{
		Role:    req.Role,
		Keyword: req.Keyword,
		Offset:  req.GetOffset(),
		Limit:   req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		existing, err := s.repo.User.GetByEmail(ctx, *req.Email)
		if err == nil && existing.UserID != id {
			return nil, ErrEmailExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Role != nil && *req.Role != user.Role {
		if id == callerID {
			return nil, ErrUserSelfRole
		}
		user.Role = *req.Role
	}
	if req.GradYear != nil {
		user.GradYear = req.GradYear
	}

	user.UpdatedByUser(callerID)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	invalidateSuggestions(ctx, s.cache, s.logger)
	return toUserResponse(user), nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}

	if _, err := s.repo.User.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	invalidateSuggestions(ctx, s.cache, s.logger)
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = errors.New("spreadsheet has no data rows (the first row is the header)")
	ErrImportTooManyRows = fmt.Errorf("spreadsheet exceeds the limit of %d rows", maxImportRows)
	ErrImportBadHeader   = errors.New("spreadsheet header must contain first name, last name and email columns")
	ErrImportUnreadable  = errors.New("file is not a readable .xlsx spreadsheet")
)

// ParseImportFile 解析花名册 Excel，表头列序不限
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportUserRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["first_name"] < 0 || colIndex["last_name"] < 0 || colIndex["email"] < 0 {
		return nil, ErrImportBadHeader
	}

	cellAt := func(row []string, key string) string {
		if idx := colIndex[key]; idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []ImportUserRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportUserRow{
			Row:       i + 1,
			FirstName: cellAt(row, "first_name"),
			LastName:  cellAt(row, "last_name"),
			Email:     cellAt(row, "email"),
			GradYear:  cellAt(row, "grad_year"),
		}

		// 跳过全空行
		if item.FirstName == "" && item.LastName == "" && item.Email == "" && item.GradYear == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex 表头列名 → 列索引，未出现的列为 -1
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"first_name": -1,
		"last_name":  -1,
		"email":      -1,
		"grad_year":  -1,
	}
	for i, h := range header {
		key := strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(h, "_", " ")), " "))
		switch key {
		case "first name", "firstname", "given name":
			idx["first_name"] = i
		case "last name", "lastname", "surname", "family name":
			idx["last_name"] = i
		case "email", "e-mail", "email address":
			idx["email"] = i
		case "grad year", "gradyear", "graduation year", "class year":
			idx["grad_year"] = i
		}
	}
	return idx
}

// ────────────────────── ImportUsers ──────────────────────

func (s *userService) ImportUsers(ctx context.Context, rows []ImportUserRow, callerID string) (*dto.ImportUserResponse, error) {
	resp := &dto.ImportUserResponse{Total: len(rows)}

	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportUserError{Row: row, Reason: reason})
	}

	// 第一阶段：逐行校验，不写库
	var valid []*model.User
	seenEmail := make(map[string]int)
	for _, row := range rows {
		if row.FirstName == "" || row.LastName == "" || row.Email == "" {
			fail(row.Row, "first name, last name and email are required")
			continue
		}
		if !strings.Contains(row.Email, "@") {
			fail(row.Row, fmt.Sprintf("invalid email: %s", row.Email))
			continue
		}

		var gradYear *int
		if row.GradYear != "" {
			y, err := strconv.Atoi(row.GradYear)
			if err != nil || y < 1900 || y > 2100 {
				fail(row.Row, fmt.Sprintf("invalid grad year: %s", row.GradYear))
				continue
			}
			gradYear = &y
		}

		emailKey := strings.ToLower(row.Email)
		if first, dup := seenEmail[emailKey]; dup {
			fail(row.Row, fmt.Sprintf("duplicate email in file (row %d): %s", first, row.Email))
			continue
		}
		if _, err := s.repo.User.GetByEmail(ctx, row.Email); err == nil {
			fail(row.Row, fmt.Sprintf("email already registered: %s", row.Email))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		seenEmail[emailKey] = row.Row

		user := &model.User{
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Email:     row.Email,
			Role:      model.RoleHeadTA,
			GradYear:  gradYear,
		}
		user.CreatedByUser(callerID)
		valid = append(valid, user)
	}

	// 第二阶段：在事务中批量创建
	if len(valid) > 0 {
		tx, err := s.repo.BeginTx(ctx)
		if err != nil {
			s.logger.Error("开启事务失败", zap.Error(err))
			return nil, err
		}
		defer func() {
			if r := recover(); r != nil {
				if tx != nil {
					tx.Rollback()
				}
				panic(r)
			}
		}()

		txRepo := s.repo.WithTx(tx)
		for _, user := range valid {
			if err := txRepo.User.Create(ctx, user); err != nil {
				if tx != nil {
					tx.Rollback()
				}
				s.logger.Error("导入用户写入失败，事务回滚", zap.String("email", user.Email), zap.Error(err))
				return nil, fmt.Errorf("import rolled back, failed to create %s: %w", user.Email, err)
			}
			resp.Success++
		}

		if tx != nil {
			if err := tx.Commit().Error; err != nil {
				s.logger.Error("提交事务失败", zap.Error(err))
				return nil, err
			}
		}
		invalidateSuggestions(ctx, s.cache, s.logger)
	}

	s.logger.Info("花名册导入完成",
		zap.Int("total", resp.Total), zap.Int("success", resp.Success), zap.Int("failed", resp.Failed))
	return resp, nil
}

// ── 内部辅助方法 ──

func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        user.UserID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Name:      user.FullName(),
		Email:     user.Email,
		Role:      user.Role,
		GradYear:  user.GradYear,
		Version:   user.Version,
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

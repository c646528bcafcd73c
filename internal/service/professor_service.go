package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"headta/backend/internal/dto"
	"headta/backend/internal/model"
	"headta/backend/internal/repository"
)

// ErrProfessorNotFound 教授不存在
var ErrProfessorNotFound = errors.New("professor not found")

// ProfessorService 教授业务接口
type ProfessorService interface {
	Create(ctx context.Context, req *dto.CreateProfessorRequest, callerID string) (*dto.ProfessorResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProfessorResponse, error)
	List(ctx context.Context) ([]dto.ProfessorResponse, error)
}

type professorService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProfessorService 创建 ProfessorService 实例
func NewProfessorService(repo *repository.Repository, logger *zap.Logger) ProfessorService {
	return &professorService{repo: repo, logger: logger}
}

func (s *professorService) Create(ctx context.Context, req *dto.CreateProfessorRequest, callerID string) (*dto.ProfessorResponse, error) {
	p := &model.Professor{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      strings.TrimSpace(req.Email),
		Department: strings.TrimSpace(req.Department),
	}
	p.CreatedByUser(callerID)

	if err := s.repo.Professor.Create(ctx, p); err != nil {
		s.logger.Error("创建教授失败", zap.Error(err))
		return nil, err
	}
	return toProfessorResponse(p), nil
}

func (s *professorService) GetByID(ctx context.Context, id string) (*dto.ProfessorResponse, error) {
	p, err := s.repo.Professor.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfessorNotFound
		}
		s.logger.Error("查询教授失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toProfessorResponse(p), nil
}

func (s *professorService) List(ctx context.Context) ([]dto.ProfessorResponse, error) {
	list, err := s.repo.Professor.List(ctx)
	if err != nil {
		s.logger.Error("列出教授失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ProfessorResponse, 0, len(list))
	for i := range list {
		result = append(result, *toProfessorResponse(&list[i]))
	}
	return result, nil
}

func toProfessorResponse(p *model.Professor) *dto.ProfessorResponse {
	name := p.FirstName
	if p.LastName != "" {
		name += " " + p.LastName
	}
	return &dto.ProfessorResponse{
		ID:         p.ProfessorID,
		Name:       name,
		Email:      p.Email,
		Department: p.Department,
	}
}

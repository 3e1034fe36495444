package project

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"homelet/internal/domain"
)

var (
	ErrNotFound     = errors.New("project_not_found")
	ErrAccessDenied = errors.New("access_denied")
)

type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id int64) error
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Project, error)
}

type Service struct {
	projects ProjectRepository
}

func NewService(projects ProjectRepository) *Service {
	return &Service{projects: projects}
}

func (s *Service) Create(ctx context.Context, ownerID int64, req CreateProjectRequest) (*domain.Project, error) {
	p := &domain.Project{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		City:        req.City,
		Status:      domain.ProjectPlanned,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id, viewerID int64, role domain.UserRole) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.OwnerID != viewerID && role != domain.RoleAdmin {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id, actorID int64, role domain.UserRole, req UpdateProjectRequest) (*domain.Project, error) {
	p, err := s.Get(ctx, id, actorID, role)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.Status != nil {
		p.Status = domain.ProjectStatus(*req.Status)
	}

	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id, actorID int64, role domain.UserRole) error {
	if _, err := s.Get(ctx, id, actorID, role); err != nil {
		return err
	}
	return s.projects.Delete(ctx, id)
}

func (s *Service) ListMine(ctx context.Context, ownerID int64) ([]domain.Project, error) {
	return s.projects.ListByOwner(ctx, ownerID)
}

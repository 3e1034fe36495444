package property

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"homelet/internal/domain"
	"homelet/internal/repository"
)

type PropertyRepository interface {
	Create(ctx context.Context, p *domain.Property) error
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
	Update(ctx context.Context, p *domain.Property) error
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status domain.ListingStatus) error
	List(ctx context.Context, f repository.PropertyFilters) ([]domain.Property, error)
}

type Service struct {
	properties PropertyRepository
}

func NewService(properties PropertyRepository) *Service {
	return &Service{properties: properties}
}

func (s *Service) Create(ctx context.Context, ownerID int64, req CreatePropertyRequest) (*domain.Property, error) {
	p := &domain.Property{
		OwnerID:         ownerID,
		ProjectID:       req.ProjectID,
		Title:           req.Title,
		Description:     req.Description,
		Address:         req.Address,
		City:            req.City,
		MonthlyRent:     req.MonthlyRent,
		SecurityDeposit: req.SecurityDeposit,
		IsAvailable:     true,
		Status:          domain.ListingPending,
	}
	if err := s.properties.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get hides unapproved listings from everyone except the owner and
// admins.
func (s *Service) Get(ctx context.Context, id, viewerID int64, role domain.UserRole) (*domain.Property, error) {
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.Status != domain.ListingApproved && p.OwnerID != viewerID && role != domain.RoleAdmin {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id, actorID int64, role domain.UserRole, req UpdatePropertyRequest) (*domain.Property, error) {
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.OwnerID != actorID && role != domain.RoleAdmin {
		return nil, ErrAccessDenied
	}

	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.MonthlyRent != nil {
		if *req.MonthlyRent <= 0 {
			return nil, ErrValidation
		}
		p.MonthlyRent = *req.MonthlyRent
	}
	if req.SecurityDeposit != nil {
		p.SecurityDeposit = *req.SecurityDeposit
	}
	if req.IsAvailable != nil {
		p.IsAvailable = *req.IsAvailable
	}

	if err := s.properties.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id, actorID int64, role domain.UserRole) error {
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if p.OwnerID != actorID && role != domain.RoleAdmin {
		return ErrAccessDenied
	}
	return s.properties.Delete(ctx, id)
}

// Moderate is the admin listing-approval action.
func (s *Service) Moderate(ctx context.Context, id int64, status domain.ListingStatus) (*domain.Property, error) {
	if _, err := s.properties.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.properties.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.properties.GetByID(ctx, id)
}

func (s *Service) ListPublic(ctx context.Context, f repository.PropertyFilters) ([]domain.Property, error) {
	f.OnlyVisible = true
	f.OwnerID = 0
	return s.properties.List(ctx, f)
}

func (s *Service) ListMine(ctx context.Context, ownerID int64, f repository.PropertyFilters) ([]domain.Property, error) {
	f.OwnerID = ownerID
	f.OnlyVisible = false
	return s.properties.List(ctx, f)
}

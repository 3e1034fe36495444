package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"homelet/internal/domain"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

type projectModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	OwnerID     int64     `gorm:"column:owner_id;index"`
	Name        string    `gorm:"column:name"`
	Description *string   `gorm:"column:description"`
	City        string    `gorm:"column:city"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (projectModel) TableName() string { return "projects" }

func toDomainProject(m projectModel) *domain.Project {
	var desc string
	if m.Description != nil {
		desc = *m.Description
	}

	return &domain.Project{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Description: desc,
		City:        m.City,
		Status:      domain.ProjectStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toProjectModel(p *domain.Project) projectModel {
	var desc *string
	if p.Description != "" {
		v := p.Description
		desc = &v
	}

	return projectModel{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Description: desc,
		City:        p.City,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	m := toProjectModel(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	p.ID = m.ID
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	var m projectModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainProject(m), nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	m := toProjectModel(p)
	m.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(&m).Error
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&projectModel{}, id).Error
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Project, error) {
	var rows []projectModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Project, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainProject(m))
	}
	return out, nil
}

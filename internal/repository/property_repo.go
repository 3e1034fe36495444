package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"homelet/internal/domain"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

type propertyModel struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	OwnerID         int64     `gorm:"column:owner_id;index"`
	ProjectID       *int64    `gorm:"column:project_id;index"`
	Title           string    `gorm:"column:title"`
	Description     *string   `gorm:"column:description"`
	Address         string    `gorm:"column:address"`
	City            string    `gorm:"column:city;index"`
	MonthlyRent     float64   `gorm:"column:monthly_rent"`
	SecurityDeposit float64   `gorm:"column:security_deposit"`
	IsAvailable     bool      `gorm:"column:is_available"`
	Status          string    `gorm:"column:status;index"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (propertyModel) TableName() string { return "properties" }

func toDomainProperty(m propertyModel) *domain.Property {
	var desc string
	if m.Description != nil {
		desc = *m.Description
	}

	return &domain.Property{
		ID:              m.ID,
		OwnerID:         m.OwnerID,
		ProjectID:       m.ProjectID,
		Title:           m.Title,
		Description:     desc,
		Address:         m.Address,
		City:            m.City,
		MonthlyRent:     m.MonthlyRent,
		SecurityDeposit: m.SecurityDeposit,
		IsAvailable:     m.IsAvailable,
		Status:          domain.ListingStatus(m.Status),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toPropertyModel(p *domain.Property) propertyModel {
	var desc *string
	if p.Description != "" {
		v := p.Description
		desc = &v
	}

	return propertyModel{
		ID:              p.ID,
		OwnerID:         p.OwnerID,
		ProjectID:       p.ProjectID,
		Title:           p.Title,
		Description:     desc,
		Address:         p.Address,
		City:            p.City,
		MonthlyRent:     p.MonthlyRent,
		SecurityDeposit: p.SecurityDeposit,
		IsAvailable:     p.IsAvailable,
		Status:          string(p.Status),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	m := toPropertyModel(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	p.ID = m.ID
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	var m propertyModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainProperty(m), nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	m := toPropertyModel(p)
	m.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(&m).Error
}

func (r *PropertyRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&propertyModel{}, id).Error
}

func (r *PropertyRepository) SetStatus(ctx context.Context, id int64, status domain.ListingStatus) error {
	return r.db.WithContext(ctx).
		Model(&propertyModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}).Error
}

type PropertyFilters struct {
	City        string
	OwnerID     int64
	ProjectID   int64
	Status      domain.ListingStatus
	OnlyVisible bool
	Limit       int
	Offset      int
}

func (r *PropertyRepository) List(ctx context.Context, f PropertyFilters) ([]domain.Property, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := r.db.WithContext(ctx).Model(&propertyModel{})
	if f.City != "" {
		q = q.Where("LOWER(city) = LOWER(?)", f.City)
	}
	if f.OwnerID > 0 {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.ProjectID > 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.OnlyVisible {
		q = q.Where("status = ? AND is_available = ?", string(domain.ListingApproved), true)
	}

	var rows []propertyModel
	if err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Property, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainProperty(m))
	}
	return out, nil
}

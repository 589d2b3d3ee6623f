package repository

import (
	"context"
	"errors"

	"github.com/mercatto/backoffice/internal/rir/entity"
	"gorm.io/gorm"
)

// QualityLevelRepository reads the NQA reference tables.
type QualityLevelRepository struct {
	db *gorm.DB
}

func NewQualityLevelRepository(db *gorm.DB) *QualityLevelRepository {
	return &QualityLevelRepository{db: db}
}

// FindByID returns an active quality level by id.
func (r *QualityLevelRepository) FindByID(ctx context.Context, id string) (*entity.QualityLevel, error) {
	var level entity.QualityLevel
	err := r.db.WithContext(ctx).
		Where("id = ? AND ativo = ?", id, true).
		First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindDefault returns the system-default quality level. A missing default is
// a configuration failure surfaced as ErrNotFound.
func (r *QualityLevelRepository) FindDefault(ctx context.Context) (*entity.QualityLevel, error) {
	var level entity.QualityLevel
	err := r.db.WithContext(ctx).
		Where("is_default = ? AND ativo = ?", true, true).
		Order("created_at ASC").
		First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindActiveMappingByGroup returns the first active mapping for a product
// classification group, with its quality level preloaded.
func (r *QualityLevelRepository) FindActiveMappingByGroup(ctx context.Context, grupoID string) (*entity.GroupQualityLevel, error) {
	var mapping entity.GroupQualityLevel
	err := r.db.WithContext(ctx).
		Preload("QualityLevel").
		Where("grupo_id = ? AND ativo = ?", grupoID, true).
		Order("created_at ASC").
		First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &mapping, nil
}

package repository

import (
	"context"

	"github.com/mercatto/backoffice/internal/rir/entity"
	"gorm.io/gorm"
)

// SamplingPlanRepository reads the NQA band table.
type SamplingPlanRepository struct {
	db *gorm.DB
}

func NewSamplingPlanRepository(db *gorm.DB) *SamplingPlanRepository {
	return &SamplingPlanRepository{db: db}
}

// FindActiveByLevel returns the active bands of one quality level ordered by
// faixa_inicial, so the first band above a lot size is the next band up.
func (r *SamplingPlanRepository) FindActiveByLevel(ctx context.Context, qualityLevelID string) ([]entity.SamplingPlanRange, error) {
	var ranges []entity.SamplingPlanRange
	err := r.db.WithContext(ctx).
		Where("quality_level_id = ? AND ativo = ?", qualityLevelID, true).
		Order("faixa_inicial ASC").
		Find(&ranges).Error
	return ranges, err
}

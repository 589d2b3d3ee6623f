package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrItemConsumed signals a purchase-order line item already attached to
	// another inspection report.
	ErrItemConsumed = errors.New("purchase order item already consumed")
)

// Repositories is the data-access bundle for the receiving-inspection module.
type Repositories struct {
	QualityLevel *QualityLevelRepository
	SamplingPlan *SamplingPlanRepository
	PO           *PORepository
	Inspection   *InspectionRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		QualityLevel: NewQualityLevelRepository(db),
		SamplingPlan: NewSamplingPlanRepository(db),
		PO:           NewPORepository(db),
		Inspection:   NewInspectionRepository(db),
	}
}

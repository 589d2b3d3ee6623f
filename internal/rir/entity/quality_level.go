package entity

import "time"

// DefaultQualityLevelCode is the system-wide NQA fallback applied when a
// product group has no explicit mapping.
const DefaultQualityLevelCode = "2,5"

// QualityLevel (NQA) classifies how strictly a product category is inspected.
type QualityLevel struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	Codigo        string    `json:"codigo" gorm:"size:10;uniqueIndex;not null"` // "1,0" / "2,5" / "4,0" / "6,5"
	Nome          string    `json:"nome" gorm:"size:100"`
	NivelInspecao string    `json:"nivel_inspecao" gorm:"size:20"` // general inspection level, e.g. "II"
	IsDefault     bool      `json:"is_default" gorm:"default:false"`
	Ativo         bool      `json:"ativo" gorm:"default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (QualityLevel) TableName() string {
	return "rir_quality_levels"
}

// GroupQualityLevel maps one product classification group to a QualityLevel.
// At most one active mapping per group is meaningful; lookups take the first.
type GroupQualityLevel struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	GrupoID        string    `json:"grupo_id" gorm:"size:32;not null;index"`
	QualityLevelID string    `json:"quality_level_id" gorm:"size:32;not null"`
	Ativo          bool      `json:"ativo" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	QualityLevel *QualityLevel `json:"quality_level,omitempty" gorm:"foreignKey:QualityLevelID"`
}

func (GroupQualityLevel) TableName() string {
	return "rir_group_quality_levels"
}

// SamplingPlanRange is one band of the NQA table: an inclusive lot-size range
// mapped to a sample size and the accept/reject defect thresholds.
type SamplingPlanRange struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	QualityLevelID string    `json:"quality_level_id" gorm:"size:32;not null;index"`
	FaixaInicial   int       `json:"faixaInicial" gorm:"not null"`
	FaixaFinal     int       `json:"faixaFinal" gorm:"not null"`
	TamanhoAmostra int       `json:"tamanhoAmostra" gorm:"not null"`
	AC             int       `json:"ac" gorm:"column:ac;not null"` // max defects that still accept
	RE             int       `json:"re" gorm:"column:re;not null"` // min defects that reject
	Ativo          bool      `json:"ativo" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (SamplingPlanRange) TableName() string {
	return "rir_sampling_plan_ranges"
}

// Contains reports whether the lot size falls inside this band.
func (r SamplingPlanRange) Contains(lotSize int) bool {
	return lotSize >= r.FaixaInicial && lotSize <= r.FaixaFinal
}

package repository

import (
	"context"
	"errors"

	"github.com/mercatto/backoffice/internal/rir/entity"
	"gorm.io/gorm"
)

// InspectionRepository persists the inspection-report aggregate. Header and
// lines are always written inside one transaction; consumption of purchase
// order items is re-checked under that same transaction.
type InspectionRepository struct {
	db *gorm.DB
}

func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// ReportStatistics summarizes the filtered report set for the list screen.
type ReportStatistics struct {
	Total      int64 `json:"total"`
	Aprovados  int64 `json:"aprovados"`
	Reprovados int64 `json:"reprovados"`
	Parciais   int64 `json:"parciais"`
}

func (r *InspectionRepository) applyFilters(query *gorm.DB, filters map[string]string) *gorm.DB {
	if search := filters["search"]; search != "" {
		like := "%" + search + "%"
		query = query.Where("nota_fiscal ILIKE ? OR fornecedor ILIKE ? OR numero_pedido ILIKE ?", like, like, like)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("resultado_geral = ?", status)
	}
	if supplier := filters["supplier"]; supplier != "" {
		query = query.Where("fornecedor ILIKE ?", "%"+supplier+"%")
	}
	if from := filters["date_from"]; from != "" {
		query = query.Where("data_inspecao >= ?", from)
	}
	if to := filters["date_to"]; to != "" {
		query = query.Where("data_inspecao <= ?", to)
	}
	return query
}

// FindAll lists report headers (without lines) with filters and pagination.
func (r *InspectionRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.InspectionReport, int64, error) {
	var items []entity.InspectionReport
	var total int64

	query := r.applyFilters(r.db.WithContext(ctx).Model(&entity.InspectionReport{}), filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// Statistics counts the filtered set per overall verdict.
func (r *InspectionRepository) Statistics(ctx context.Context, filters map[string]string) (*ReportStatistics, error) {
	stats := &ReportStatistics{}
	query := r.applyFilters(r.db.WithContext(ctx).Model(&entity.InspectionReport{}), filters)

	row := query.Select(`
		COUNT(*),
		COUNT(CASE WHEN resultado_geral = 'APROVADO' THEN 1 END),
		COUNT(CASE WHEN resultado_geral = 'REPROVADO' THEN 1 END),
		COUNT(CASE WHEN resultado_geral = 'PARCIAL' THEN 1 END)`).Row()
	if err := row.Scan(&stats.Total, &stats.Aprovados, &stats.Reprovados, &stats.Parciais); err != nil {
		return nil, err
	}
	return stats, nil
}

// FindByID returns a report with its lines in submission order.
func (r *InspectionRepository) FindByID(ctx context.Context, id string) (*entity.InspectionReport, error) {
	var report entity.InspectionReport
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// checkConsumed fails with ErrItemConsumed when any referenced purchase-order
// item is already attached to a different report. Runs inside the write
// transaction so the read-time availability guard cannot be raced past.
func checkConsumed(tx *gorm.DB, report *entity.InspectionReport) error {
	ids := make([]string, 0, len(report.Lines))
	for _, l := range report.Lines {
		if l.PedidoItemID != nil && *l.PedidoItemID != "" {
			ids = append(ids, *l.PedidoItemID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var count int64
	err := tx.Model(&entity.InspectionLine{}).
		Where("pedido_item_id IN ?", ids).
		Where("report_id <> ?", report.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrItemConsumed
	}
	return nil
}

// CreateWithLines persists header and lines atomically.
func (r *InspectionRepository) CreateWithLines(ctx context.Context, report *entity.InspectionReport) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkConsumed(tx, report); err != nil {
			return err
		}

		lines := report.Lines
		report.Lines = nil
		if err := tx.Create(report).Error; err != nil {
			report.Lines = lines
			return err
		}
		for i := range lines {
			lines[i].ReportID = report.ID
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				report.Lines = lines
				return err
			}
		}
		report.Lines = lines
		return nil
	})
}

// ReplaceWithLines updates the header and replaces the whole line set
// (delete-all-then-insert-all) in one transaction. Partial failure leaves the
// previous line set intact.
func (r *InspectionRepository) ReplaceWithLines(ctx context.Context, report *entity.InspectionReport) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entity.InspectionReport
		if err := tx.Where("id = ?", report.ID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		report.CreatedBy = existing.CreatedBy
		report.CreatedAt = existing.CreatedAt

		if err := tx.Where("report_id = ?", report.ID).Delete(&entity.InspectionLine{}).Error; err != nil {
			return err
		}
		if err := checkConsumed(tx, report); err != nil {
			return err
		}

		lines := report.Lines
		report.Lines = nil
		if err := tx.Save(report).Error; err != nil {
			report.Lines = lines
			return err
		}
		for i := range lines {
			lines[i].ReportID = report.ID
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				report.Lines = lines
				return err
			}
		}
		report.Lines = lines
		return nil
	})
}

// Delete hard-deletes the header and cascades to its lines.
func (r *InspectionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var report entity.InspectionReport
		if err := tx.Where("id = ?", id).First(&report).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("report_id = ?", id).Delete(&entity.InspectionLine{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.InspectionReport{}).Error
	})
}

// ConsumedItems maps each consumed purchase-order item id to the report that
// holds it, for the given candidate ids.
func (r *InspectionRepository) ConsumedItems(ctx context.Context, itemIDs []string) (map[string]string, error) {
	consumed := make(map[string]string)
	if len(itemIDs) == 0 {
		return consumed, nil
	}

	var rows []entity.InspectionLine
	err := r.db.WithContext(ctx).
		Select("pedido_item_id", "report_id").
		Where("pedido_item_id IN ?", itemIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.PedidoItemID != nil {
			consumed[*row.PedidoItemID] = row.ReportID
		}
	}
	return consumed, nil
}

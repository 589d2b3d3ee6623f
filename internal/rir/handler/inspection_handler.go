package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mercatto/backoffice/internal/rir/service"
)

// InspectionHandler exposes the inspection-report aggregate.
type InspectionHandler struct {
	svc *service.InspectionService
}

func NewInspectionHandler(svc *service.InspectionService) *InspectionHandler {
	return &InspectionHandler{svc: svc}
}

// ListReports lists report headers with statistics.
// GET /api/v1/inspections?search=&status=&supplier=&date_from=&date_to=&page=&limit=
func (h *InspectionHandler) ListReports(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"search":    c.Query("search"),
		"status":    c.Query("status"),
		"supplier":  c.Query("supplier"),
		"date_from": c.Query("date_from"),
		"date_to":   c.Query("date_to"),
	}

	items, total, stats, err := h.svc.ListReports(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "falha ao listar relatórios de inspeção: "+err.Error())
		return
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages(total, pageSize),
		},
		Statistics: stats,
	})
}

// GetReport returns one report with its lines.
// GET /api/v1/inspections/:id
func (h *InspectionHandler) GetReport(c *gin.Context) {
	report, err := h.svc.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err, "falha ao consultar relatório")
		return
	}
	Success(c, report)
}

// CreateReport creates header + lines as one aggregate.
// POST /api/v1/inspections
func (h *InspectionHandler) CreateReport(c *gin.Context) {
	var req service.ReportInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "corpo da requisição inválido: "+err.Error())
		return
	}

	report, err := h.svc.CreateReport(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err, "falha ao criar relatório")
		return
	}
	Created(c, report)
}

// UpdateReport replaces the whole line set.
// PUT /api/v1/inspections/:id
func (h *InspectionHandler) UpdateReport(c *gin.Context) {
	var req service.ReportInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "corpo da requisição inválido: "+err.Error())
		return
	}

	report, err := h.svc.UpdateReport(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err, "falha ao atualizar relatório")
		return
	}
	Success(c, report)
}

// DeleteReport hard-deletes the report and its lines.
// DELETE /api/v1/inspections/:id
func (h *InspectionHandler) DeleteReport(c *gin.Context) {
	if err := h.svc.DeleteReport(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err, "falha ao excluir relatório")
		return
	}
	c.Status(http.StatusNoContent)
}

// AvailableItems lists an order's line items still available for inspection.
// GET /api/v1/inspections/purchase-order-items?order_id=xxx&report_id=yyy
func (h *InspectionHandler) AvailableItems(c *gin.Context) {
	orderID := c.Query("order_id")
	if orderID == "" {
		BadRequest(c, "parâmetro obrigatório: order_id")
		return
	}

	result, err := h.svc.ListAvailableItems(c.Request.Context(), orderID, c.Query("report_id"))
	if err != nil {
		RespondError(c, err, "falha ao listar itens do pedido")
		return
	}
	Success(c, result)
}

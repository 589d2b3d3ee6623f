package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mercatto/backoffice/internal/rir/repository"
)

// POHandler is the read-only purchase-order surface feeding the inspection UI.
type POHandler struct {
	repo *repository.PORepository
}

func NewPOHandler(repo *repository.PORepository) *POHandler {
	return &POHandler{repo: repo}
}

// ListOrders lists purchase orders.
// GET /api/v1/purchase-orders?search=&status=&page=&limit=
func (h *POHandler) ListOrders(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"search": c.Query("search"),
		"status": c.Query("status"),
	}

	items, total, err := h.repo.FindAll(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "falha ao listar pedidos: "+err.Error())
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
	})
}

// GetOrder returns one purchase order with its items.
// GET /api/v1/purchase-orders/:id
func (h *POHandler) GetOrder(c *gin.Context) {
	po, err := h.repo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err, "falha ao consultar pedido")
		return
	}
	Success(c, po)
}

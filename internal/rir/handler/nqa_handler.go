package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mercatto/backoffice/internal/rir/service"
)

// NQAHandler exposes the quality-level and sampling-plan resolvers.
type NQAHandler struct {
	svc *service.NQAService
}

func NewNQAHandler(svc *service.NQAService) *NQAHandler {
	return &NQAHandler{svc: svc}
}

// QualityLevelForGroup resolves a classification group to its quality level,
// falling back to the system default.
// GET /api/v1/inspections/quality-level?group_id=xxx
func (h *NQAHandler) QualityLevelForGroup(c *gin.Context) {
	level, err := h.svc.ResolveForGroup(c.Request.Context(), c.Query("group_id"))
	if err != nil {
		RespondError(c, err, "falha ao resolver nível de qualidade")
		return
	}
	Success(c, level)
}

// SamplingPlanForLot resolves the sampling plan for a quality level and lot size.
// GET /api/v1/inspections/sampling-plan?quality_level_id=xxx&lot_size=75
func (h *NQAHandler) SamplingPlanForLot(c *gin.Context) {
	qualityLevelID := c.Query("quality_level_id")
	if qualityLevelID == "" {
		BadRequest(c, "parâmetro obrigatório: quality_level_id")
		return
	}

	lotSize, err := strconv.Atoi(c.Query("lot_size"))
	if err != nil {
		BadRequest(c, "lot_size deve ser um inteiro")
		return
	}

	plan, err := h.svc.ResolvePlan(c.Request.Context(), qualityLevelID, lotSize)
	if err != nil {
		RespondError(c, err, "falha ao resolver plano de amostragem")
		return
	}
	Success(c, plan)
}

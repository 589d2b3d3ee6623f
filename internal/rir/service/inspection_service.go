package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mercatto/backoffice/internal/rir/entity"
	"github.com/mercatto/backoffice/internal/rir/repository"
	"go.uber.org/zap"
)

// ProductGroupSource resolves a product code to its classification group.
// The local denormalized snapshot is tried first; when it is empty this
// source (catalog-backed in production) fills the gap.
type ProductGroupSource interface {
	GroupForProduct(ctx context.Context, codigoProduto string) (string, error)
}

// InspectionService owns the inspection-report aggregate: creation,
// full-replace update, deletion, and the item-availability guard.
type InspectionService struct {
	repo   *repository.InspectionRepository
	poRepo *repository.PORepository
	nqa    *NQAService
	groups ProductGroupSource
	logger *zap.Logger
}

func NewInspectionService(repo *repository.InspectionRepository, poRepo *repository.PORepository, nqa *NQAService) *InspectionService {
	return &InspectionService{
		repo:   repo,
		poRepo: poRepo,
		nqa:    nqa,
		logger: zap.NewNop(),
	}
}

// SetProductGroupSource injects the catalog-backed group lookup.
func (s *InspectionService) SetProductGroupSource(src ProductGroupSource) {
	s.groups = src
}

func (s *InspectionService) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// LineInput is one submitted inspection line. Dates arrive as dd/mm/yyyy text
// and are normalized before persistence.
type LineInput struct {
	PedidoItemID     *string `json:"pedido_item_id"`
	CodigoProduto    string  `json:"codigo_produto"`
	DescricaoProduto string  `json:"descricao_produto"`
	Unidade          string  `json:"unidade"`
	QtdePedida       float64 `json:"qtde_pedida"`
	GrupoID          string  `json:"grupo_id"`
	NQACodigo        string  `json:"nqa_codigo"`

	Fabricacao         string `json:"fabricacao"`
	Lote               string `json:"lote"`
	Validade           string `json:"validade"`
	Temperatura        string `json:"temperatura"`
	AvaliacaoSensorial string `json:"avaliacao_sensorial"`

	TamLote               int `json:"tamLote"`
	NumAmostrasAvaliadas  int `json:"numAmostrasAvaliadas"`
	NumAmostrasAprovadas  int `json:"numAmostrasAprovadas"`
	NumAmostrasReprovadas int `json:"numAmostrasReprovadas"`
	AC                    int `json:"ac"`
	RE                    int `json:"re"`

	ControleValidade *float64 `json:"controle_validade"`
	Observacao       string   `json:"observacao"`
	ResultadoFinal   string   `json:"resultadoFinal"`
}

// ReportInput is the submitted header plus the full line set. resultado_geral
// is never accepted from the caller.
type ReportInput struct {
	DataInspecao string `json:"data_inspecao"`
	HoraInspecao string `json:"hora_inspecao"`
	NotaFiscal   string `json:"nota_fiscal"`
	Fornecedor   string `json:"fornecedor"`
	CNPJ         string `json:"cnpj"`
	NumeroPedido string `json:"numero_pedido"`
	RecebidoPor  string `json:"recebido_por"`
	Responsavel  string `json:"responsavel"`
	Ocorrencias  string `json:"ocorrencias"`

	Lines []LineInput `json:"lines"`
}

func validateInput(req *ReportInput) error {
	required := []struct{ name, value string }{
		{"data_inspecao", req.DataInspecao},
		{"hora_inspecao", req.HoraInspecao},
		{"nota_fiscal", req.NotaFiscal},
		{"fornecedor", req.Fornecedor},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: campo obrigatório: %s", ErrValidation, f.name)
		}
	}
	seenItems := make(map[string]int)
	for i, l := range req.Lines {
		switch l.ResultadoFinal {
		case "", entity.LineResultAprovado, entity.LineResultReprovado:
		default:
			return fmt.Errorf("%w: resultadoFinal inválido na linha %d: %q", ErrValidation, i+1, l.ResultadoFinal)
		}
		if l.PedidoItemID != nil && *l.PedidoItemID != "" {
			if prev, dup := seenItems[*l.PedidoItemID]; dup {
				return fmt.Errorf("%w: item do pedido repetido nas linhas %d e %d", ErrValidation, prev+1, i+1)
			}
			seenItems[*l.PedidoItemID] = i
		}
	}
	return nil
}

func newID() string {
	return uuid.New().String()[:32]
}

// buildReport materializes the aggregate: ids, normalized dates, submission
// order, and the derived overall verdict.
func buildReport(id string, req *ReportInput) *entity.InspectionReport {
	report := &entity.InspectionReport{
		ID:           id,
		DataInspecao: entity.NormalizeDate(req.DataInspecao),
		HoraInspecao: req.HoraInspecao,
		NotaFiscal:   req.NotaFiscal,
		Fornecedor:   req.Fornecedor,
		CNPJ:         req.CNPJ,
		NumeroPedido: req.NumeroPedido,
		RecebidoPor:  req.RecebidoPor,
		Responsavel:  req.Responsavel,
		Ocorrencias:  req.Ocorrencias,
	}

	for i, l := range req.Lines {
		line := entity.InspectionLine{
			ID:                    newID(),
			ReportID:              id,
			PedidoItemID:          l.PedidoItemID,
			CodigoProduto:         l.CodigoProduto,
			DescricaoProduto:      l.DescricaoProduto,
			Unidade:               l.Unidade,
			QtdePedida:            l.QtdePedida,
			GrupoID:               l.GrupoID,
			NQACodigo:             l.NQACodigo,
			Fabricacao:            entity.NormalizeDate(l.Fabricacao),
			Lote:                  l.Lote,
			Validade:              entity.NormalizeDate(l.Validade),
			Temperatura:           l.Temperatura,
			AvaliacaoSensorial:    l.AvaliacaoSensorial,
			TamLote:               l.TamLote,
			NumAmostrasAvaliadas:  l.NumAmostrasAvaliadas,
			NumAmostrasAprovadas:  l.NumAmostrasAprovadas,
			NumAmostrasReprovadas: l.NumAmostrasReprovadas,
			AC:                    l.AC,
			RE:                    l.RE,
			ControleValidade:      l.ControleValidade,
			Observacao:            l.Observacao,
			ResultadoFinal:        l.ResultadoFinal,
			SortOrder:             i,
		}
		report.Lines = append(report.Lines, line)
	}

	report.ResultadoGeral = entity.OverallVerdict(report.Lines)
	return report
}

func mapRepoError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrItemConsumed) {
		return fmt.Errorf("%w: item do pedido já utilizado por outro relatório", ErrConflict)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// ListReports lists headers with pagination and per-verdict statistics.
func (s *InspectionService) ListReports(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.InspectionReport, int64, *repository.ReportStatistics, error) {
	items, total, err := s.repo.FindAll(ctx, page, pageSize, filters)
	if err != nil {
		return nil, 0, nil, err
	}
	stats, err := s.repo.Statistics(ctx, filters)
	if err != nil {
		return nil, 0, nil, err
	}
	return items, total, stats, nil
}

// GetReport returns one report with lines.
func (s *InspectionService) GetReport(ctx context.Context, id string) (*entity.InspectionReport, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateReport validates the header, derives the overall verdict and persists
// header + lines atomically.
func (s *InspectionService) CreateReport(ctx context.Context, userID string, req *ReportInput) (*entity.InspectionReport, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	report := buildReport(newID(), req)
	report.CreatedBy = userID
	report.UpdatedBy = userID

	if err := s.repo.CreateWithLines(ctx, report); err != nil {
		return nil, mapRepoError(err, "criando relatório de inspeção")
	}
	return report, nil
}

// UpdateReport replaces the whole aggregate: the previous line set is
// discarded and the submitted one takes its place, all-or-nothing.
func (s *InspectionService) UpdateReport(ctx context.Context, id, userID string, req *ReportInput) (*entity.InspectionReport, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	report := buildReport(id, req)
	report.UpdatedBy = userID

	if err := s.repo.ReplaceWithLines(ctx, report); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, mapRepoError(err, "atualizando relatório de inspeção")
	}
	return report, nil
}

// DeleteReport hard-deletes the report and its lines.
func (s *InspectionService) DeleteReport(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// LineItemCandidate is a purchase-order item offered to the inspection UI,
// enriched with its classification group and resolved NQA code.
type LineItemCandidate struct {
	ID                      string  `json:"id"`
	CodigoProduto           string  `json:"codigo_produto"`
	DescricaoProduto        string  `json:"descricao_produto"`
	Unidade                 string  `json:"unidade"`
	Quantidade              float64 `json:"quantidade"`
	GrupoID                 string  `json:"grupo_id,omitempty"`
	NQACodigo               string  `json:"nqa_codigo,omitempty"`
	AlreadyUsedByThisReport bool    `json:"alreadyUsedByThisReport"`
}

// OrderSummary is the header of the order the candidates belong to.
type OrderSummary struct {
	ID         string `json:"id"`
	Numero     string `json:"numero"`
	Fornecedor string `json:"fornecedor"`
	CNPJ       string `json:"cnpj"`
}

// AvailableItemsResult pairs the order summary with its candidate items.
type AvailableItemsResult struct {
	Pedido OrderSummary        `json:"pedido"`
	Items  []LineItemCandidate `json:"items"`
}

// ListAvailableItems lists line items of an order not yet consumed by any
// report. With currentReportID set (edit mode) that report's own items stay
// visible, flagged alreadyUsedByThisReport.
func (s *InspectionService) ListAvailableItems(ctx context.Context, orderID, currentReportID string) (*AvailableItemsResult, error) {
	po, err := s.poRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]string, 0, len(po.Items))
	for _, it := range po.Items {
		itemIDs = append(itemIDs, it.ID)
	}
	consumed, err := s.repo.ConsumedItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	result := &AvailableItemsResult{
		Pedido: OrderSummary{
			ID:         po.ID,
			Numero:     po.Numero,
			Fornecedor: po.Fornecedor,
			CNPJ:       po.CNPJ,
		},
		Items: []LineItemCandidate{},
	}

	for _, it := range po.Items {
		holder, used := consumed[it.ID]
		if used && holder != currentReportID {
			continue
		}

		candidate := LineItemCandidate{
			ID:                      it.ID,
			CodigoProduto:           it.CodigoProduto,
			DescricaoProduto:        it.DescricaoProduto,
			Unidade:                 it.Unidade,
			Quantidade:              it.Quantidade,
			GrupoID:                 it.GrupoID,
			AlreadyUsedByThisReport: used,
		}
		s.enrich(ctx, &candidate)
		result.Items = append(result.Items, candidate)
	}
	return result, nil
}

// enrich fills the classification group (local snapshot first, catalog
// fallback) and the resolved NQA code. Catalog failures degrade to missing
// enrichment, never to a failed request.
func (s *InspectionService) enrich(ctx context.Context, candidate *LineItemCandidate) {
	if candidate.GrupoID == "" && s.groups != nil {
		grupo, err := s.groups.GroupForProduct(ctx, candidate.CodigoProduto)
		if err != nil {
			s.logger.Warn("product catalog lookup failed, candidate left unenriched",
				zap.String("codigo_produto", candidate.CodigoProduto),
				zap.Error(fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)))
			return
		}
		candidate.GrupoID = grupo
	}

	level, err := s.nqa.ResolveForGroup(ctx, candidate.GrupoID)
	if err != nil {
		s.logger.Warn("quality level resolution failed",
			zap.String("grupo_id", candidate.GrupoID), zap.Error(err))
		return
	}
	candidate.NQACodigo = level.Codigo
}

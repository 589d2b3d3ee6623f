package entity

import (
	"strings"
	"time"
)

// Per-line verdict as entered by the inspector.
const (
	LineResultAprovado  = "Aprovado"
	LineResultReprovado = "Reprovado"
)

// Report-level verdict derived from the line verdicts.
const (
	OverallAprovado  = "APROVADO"
	OverallReprovado = "REPROVADO"
	OverallParcial   = "PARCIAL"
)

// InspectionReport (RIR) is the aggregate root of one receiving inspection:
// header fields plus the owned line collection. ResultadoGeral is always
// recomputed from the lines, never accepted from a caller.
type InspectionReport struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	DataInspecao   string    `json:"data_inspecao" gorm:"size:10"` // yyyy-mm-dd; empty when source text was unparseable
	HoraInspecao   string    `json:"hora_inspecao" gorm:"size:8"`
	NotaFiscal     string    `json:"nota_fiscal" gorm:"size:50;not null"`
	Fornecedor     string    `json:"fornecedor" gorm:"size:200;not null"`
	CNPJ           string    `json:"cnpj" gorm:"size:20"`
	NumeroPedido   string    `json:"numero_pedido" gorm:"size:50"`
	RecebidoPor    string    `json:"recebido_por" gorm:"size:100"`
	Responsavel    string    `json:"responsavel" gorm:"size:100"`
	Ocorrencias    string    `json:"ocorrencias" gorm:"type:text"`
	ResultadoGeral string    `json:"resultado_geral" gorm:"size:20"`
	CreatedBy      string    `json:"created_by" gorm:"size:32"`
	UpdatedBy      string    `json:"updated_by" gorm:"size:32"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Lines []InspectionLine `json:"lines,omitempty" gorm:"foreignKey:ReportID"`
}

func (InspectionReport) TableName() string {
	return "rir_inspection_reports"
}

// InspectionLine records one inspected product. PedidoItemID is nil when the
// product arrived outside a tracked purchase order; when set, the item is
// consumed by exactly one report at a time.
type InspectionLine struct {
	ID           string  `json:"id" gorm:"primaryKey;size:32"`
	ReportID     string  `json:"report_id" gorm:"size:32;not null;index"`
	PedidoItemID *string `json:"pedido_item_id" gorm:"size:32"`

	// Denormalized product snapshot
	CodigoProduto    string  `json:"codigo_produto" gorm:"size:50"`
	DescricaoProduto string  `json:"descricao_produto" gorm:"size:200"`
	Unidade          string  `json:"unidade" gorm:"size:20"`
	QtdePedida       float64 `json:"qtde_pedida" gorm:"type:decimal(10,2)"`
	GrupoID          string  `json:"grupo_id" gorm:"size:32"`
	NQACodigo        string  `json:"nqa_codigo" gorm:"size:10"`

	Fabricacao         string `json:"fabricacao" gorm:"size:10"` // yyyy-mm-dd or empty
	Lote               string `json:"lote" gorm:"size:50"`
	Validade           string `json:"validade" gorm:"size:10"` // yyyy-mm-dd or empty
	Temperatura        string `json:"temperatura" gorm:"size:30"`
	AvaliacaoSensorial string `json:"avaliacao_sensorial" gorm:"size:200"`

	TamLote               int `json:"tamLote"`
	NumAmostrasAvaliadas  int `json:"numAmostrasAvaliadas"`
	NumAmostrasAprovadas  int `json:"numAmostrasAprovadas"`
	NumAmostrasReprovadas int `json:"numAmostrasReprovadas"`
	AC                    int `json:"ac" gorm:"column:ac"`
	RE                    int `json:"re" gorm:"column:re"`

	ControleValidade *float64 `json:"controle_validade" gorm:"type:decimal(10,2)"`
	Observacao       string   `json:"observacao" gorm:"type:text"`
	ResultadoFinal   string   `json:"resultadoFinal" gorm:"size:20"` // Aprovado / Reprovado / empty

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InspectionLine) TableName() string {
	return "rir_inspection_lines"
}

// OverallVerdict folds the line verdicts into the report label. Only
// "Reprovado" lines can pull the report away from APROVADO: none means
// APROVADO, reproved mixed with approved means PARCIAL, reproved with no
// approved lines means REPROVADO. Lines without a verdict count for neither.
func OverallVerdict(lines []InspectionLine) string {
	aprovados, reprovados := 0, 0
	for _, l := range lines {
		switch l.ResultadoFinal {
		case LineResultAprovado:
			aprovados++
		case LineResultReprovado:
			reprovados++
		}
	}
	if reprovados == 0 {
		return OverallAprovado
	}
	if aprovados > 0 {
		return OverallParcial
	}
	return OverallReprovado
}

// NormalizeDate converts dd/mm/yyyy text into canonical yyyy-mm-dd. Already
// canonical input passes through. Anything else yields the empty string: a
// malformed date is stored as absent, not rejected.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := time.Parse("02/01/2006", s); err == nil {
		return t.Format("2006-01-02")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02")
	}
	return ""
}

package entity

import "time"

// PurchaseOrder is reference data owned by the procurement module. The
// inspection engine only reads it (order summary + line items).
type PurchaseOrder struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	Numero     string    `json:"numero" gorm:"size:50;uniqueIndex;not null"`
	Fornecedor string    `json:"fornecedor" gorm:"size:200;not null"`
	CNPJ       string    `json:"cnpj" gorm:"size:20"`
	Status     string    `json:"status" gorm:"size:20;default:aberto"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Items []PurchaseOrderItem `json:"items,omitempty" gorm:"foreignKey:PedidoID"`
}

func (PurchaseOrder) TableName() string {
	return "compras_pedidos"
}

// PurchaseOrderItem is one delivered product line; Quantidade is the lot size
// offered to the sampling engine.
type PurchaseOrderItem struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	PedidoID         string    `json:"pedido_id" gorm:"size:32;not null;index"`
	CodigoProduto    string    `json:"codigo_produto" gorm:"size:50;not null"`
	DescricaoProduto string    `json:"descricao_produto" gorm:"size:200;not null"`
	Unidade          string    `json:"unidade" gorm:"size:20;default:un"`
	GrupoID          string    `json:"grupo_id" gorm:"size:32"` // denormalized classification group, may be empty
	Quantidade       float64   `json:"quantidade" gorm:"type:decimal(10,2);not null"`
	SortOrder        int       `json:"sort_order" gorm:"default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (PurchaseOrderItem) TableName() string {
	return "compras_pedido_itens"
}

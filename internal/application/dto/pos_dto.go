package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
)

// BeginTransactionRequest body de POST /api/pos/sessions/:id/start.
type BeginTransactionRequest struct {
	CustomerID string `json:"customer_id" validate:"required,max=32"`
	BranchID   string `json:"branch_id" validate:"required,max=32"`
}

// AddProductRequest body de POST /api/pos/sessions/:id/items.
type AddProductRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=9999"`
}

// ApplyPromotionRequest body de POST /api/pos/sessions/:id/promotions.
type ApplyPromotionRequest struct {
	PromotionCode string `json:"promotion_code" validate:"required,max=64"`
}

// FinalizeRequest body de POST /api/pos/sessions/:id/payment.
type FinalizeRequest struct {
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash card transfer"`
	AmountPaid    decimal.Decimal `json:"amount_paid" validate:"min=0"`
}

// ChangePreviewDTO respuesta de GET /api/pos/sessions/:id/change?amount_paid=.
type ChangePreviewDTO struct {
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Total      decimal.Decimal `json:"total"`
	Change     decimal.Decimal `json:"change"`
	CanSubmit  bool            `json:"can_submit"`
}

// SessionDTO estado de una sesión de caja.
type SessionDTO struct {
	SessionID   string             `json:"session_id"`
	Step        int                `json:"step"`
	StepLabel   string             `json:"step_label"`
	Progress    float64            `json:"progress"`
	Transaction entity.Transaction `json:"transaction"`
	Discounts   decimal.Decimal    `json:"discount_total"`
	Message     string             `json:"message,omitempty"`
	IsError     bool               `json:"is_error"`
	Loading     bool               `json:"loading"`
	ExpiresAt   time.Time          `json:"expires_at"`
}

// SessionErrorResponse error de una acción del asistente junto con el estado vigente,
// para que el cliente siga mostrando el paso actual con el mensaje en línea.
type SessionErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Session *SessionDTO `json:"session,omitempty"`
}

// StartupDataDTO datos del primer paso: clientes y sedes disponibles.
type StartupDataDTO struct {
	Customers []entity.Customer `json:"customers"`
	Branches  []entity.Branch   `json:"branches"`
}

// ReceiptDTO comprobante archivado.
type ReceiptDTO struct {
	TransactionID    string             `json:"transaction_id"`
	VerificationCode string             `json:"verification_code"`
	IssuedAt         time.Time          `json:"issued_at"`
	IssuedBy         string             `json:"issued_by,omitempty"`
	Valid            bool               `json:"valid"`
	Transaction      entity.Transaction `json:"transaction"`
}

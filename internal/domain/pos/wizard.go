// Package pos contiene la máquina de estados del asistente de venta de caja.
//
// Pasos:
//
//	Start(1) ──Begin──▶ ItemEntry(2) ──ProceedToPayment──▶ Payment(3) ──Finalize──▶ Receipt(4)
//	   ▲                  │  AddProduct / ApplyPromotion                               │
//	   └──────────────────┴─────────────────────── Reset ◀────────────────────────────┘
//
// Un error nunca cambia de paso: se guarda un mensaje "Error: ..." y el usuario reintenta.
package pos

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
)

// Mensajes visibles en la interfaz de caja.
const (
	msgBegun          = "Transacción iniciada con éxito"
	msgProductAdded   = "Producto agregado: "
	msgPromoApplied   = "Promoción aplicada: "
	msgFinalized      = "Venta finalizada con éxito"
	errBeginFailed    = "Error al iniciar transacción"
	errAddFailed      = "Error al agregar producto"
	errPromoFailed    = "Error al aplicar promoción"
	errFinalizeFailed = "Error al finalizar venta"
	errorPrefix       = "Error: "
)

// State copia inmutable del estado del asistente para renderizar.
type State struct {
	Step        Step               `json:"step"`
	StepLabel   string             `json:"step_label"`
	Progress    float64            `json:"progress"`
	Transaction entity.Transaction `json:"transaction"`
	Discounts   decimal.Decimal    `json:"discount_total"`
	Message     string             `json:"message,omitempty"`
	IsError     bool               `json:"is_error"`
	Loading     bool               `json:"loading"`
}

// Wizard asistente de venta. Seguro para uso concurrente: admite como máximo una
// llamada de red en curso; una segunda acción concurrente recibe ErrBusy.
type Wizard struct {
	mu       sync.Mutex
	gw       Gateway
	step     Step
	tx       entity.Transaction
	message  string
	inFlight bool
}

// NewWizard crea un asistente en el paso Start con la transacción vacía.
func NewWizard(gw Gateway) *Wizard {
	return &Wizard{gw: gw, step: StepStart, tx: entity.EmptyTransaction()}
}

// Snapshot devuelve el estado actual.
func (w *Wizard) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Wizard) snapshotLocked() State {
	return State{
		Step:        w.step,
		StepLabel:   w.step.String(),
		Progress:    w.step.Progress(),
		Transaction: w.tx.Clone(),
		Discounts:   w.tx.DiscountTotal(),
		Message:     w.message,
		IsError:     strings.Contains(w.message, "Error"),
		Loading:     w.inFlight,
	}
}

// acquire verifica el paso y marca la llamada en curso. Quien llama limpia inFlight al terminar.
// Las validaciones de checks corren bajo el mismo lock; un fallo se registra como mensaje
// y no marca la llamada.
func (w *Wizard) acquire(want Step, checks ...func(tx *entity.Transaction) error) (entity.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return entity.Transaction{}, ErrBusy
	}
	if w.step != want {
		return entity.Transaction{}, fmt.Errorf("%w: paso %s", ErrInvalidStep, w.step)
	}
	for _, check := range checks {
		if err := check(&w.tx); err != nil {
			w.message = errorPrefix + err.Error()
			return entity.Transaction{}, err
		}
	}
	w.inFlight = true
	return w.tx.Clone(), nil
}

// failLocked registra un error de red sin cambiar de paso. Requiere w.mu tomado.
func (w *Wizard) failLocked(text string, err error) error {
	w.message = errorPrefix + text
	if err != nil {
		w.message += ": " + err.Error()
		return fmt.Errorf("%s: %w", text, err)
	}
	return fmt.Errorf("%s", text)
}

// reject registra un error de validación local sin llamada de red.
func (w *Wizard) reject(err error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return ErrBusy
	}
	w.message = errorPrefix + err.Error()
	return err
}

// Begin inicia la transacción con el cliente (cédula) y la sucursal.
// Emite exactamente una llamada y avanza a ItemEntry solo si el servidor responde con éxito.
func (w *Wizard) Begin(ctx context.Context, customerID, branchID string) error {
	customerID = strings.TrimSpace(customerID)
	branchID = strings.TrimSpace(branchID)
	if customerID == "" || branchID == "" {
		return w.reject(fmt.Errorf("%w: cliente y sucursal son obligatorios", ErrMissingField))
	}
	if _, err := w.acquire(StepStart); err != nil {
		return err
	}

	res, err := w.gw.BeginTransaction(ctx, customerID, branchID)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	if err != nil {
		return w.failLocked(errBeginFailed, err)
	}
	if res == nil || res.TransactionID == "" {
		return w.failLocked(errBeginFailed, fmt.Errorf("respuesta sin transaction_id"))
	}
	w.tx.TransactionID = res.TransactionID
	w.tx.CustomerID = customerID
	w.tx.BranchID = branchID
	w.tx.CreatedAt = res.CreatedAt
	w.step = StepItemEntry
	w.message = msgBegun
	return nil
}

// AddProduct agrega un producto a la transacción en curso.
// Si el acuse del servidor trae JSON estructurado se fusiona con las líneas locales;
// si es texto plano solo se muestra.
func (w *Wizard) AddProduct(ctx context.Context, productID string, quantity int) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return w.reject(fmt.Errorf("%w: product_id", ErrMissingField))
	}
	if quantity < 1 {
		return w.reject(ErrInvalidQuantity)
	}
	tx, err := w.acquire(StepItemEntry)
	if err != nil {
		return err
	}

	ack, err := w.gw.AddProduct(ctx, tx.TransactionID, productID, quantity)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	if err != nil {
		return w.failLocked(errAddFailed, err)
	}
	mergeAck(&w.tx, ack)
	w.message = msgProductAdded + strings.TrimSpace(ack)
	return nil
}

// ApplyPromotion aplica un código de promoción a la transacción en curso.
func (w *Wizard) ApplyPromotion(ctx context.Context, promotionCode string) error {
	promotionCode = strings.TrimSpace(promotionCode)
	if promotionCode == "" {
		return w.reject(fmt.Errorf("%w: promotion_code", ErrMissingField))
	}
	tx, err := w.acquire(StepItemEntry)
	if err != nil {
		return err
	}

	ack, err := w.gw.ApplyPromotion(ctx, tx.TransactionID, promotionCode)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	if err != nil {
		return w.failLocked(errPromoFailed, err)
	}
	mergeAck(&w.tx, ack)
	w.message = msgPromoApplied + strings.TrimSpace(ack)
	return nil
}

// ProceedToPayment transición local ItemEntry → Payment, sin llamada de red ni validación.
func (w *Wizard) ProceedToPayment() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return ErrBusy
	}
	if w.step != StepItemEntry {
		return fmt.Errorf("%w: paso %s", ErrInvalidStep, w.step)
	}
	w.step = StepPayment
	return nil
}

// PreviewChange cambio que recibiría el cliente si paga amountPaid.
func (w *Wizard) PreviewChange(amountPaid decimal.Decimal) decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return amountPaid.Sub(w.tx.Total)
}

// Finalize registra el pago y cierra la venta. El cambio se recalcula siempre como
// amount_paid - total sobre la copia devuelta por el servidor.
func (w *Wizard) Finalize(ctx context.Context, paymentMethod string, amountPaid decimal.Decimal) error {
	paymentMethod = strings.TrimSpace(paymentMethod)
	if !entity.IsValidPaymentMethod(paymentMethod) {
		return w.reject(fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, paymentMethod))
	}
	tx, err := w.acquire(StepPayment, func(tx *entity.Transaction) error {
		if amountPaid.IsNegative() || amountPaid.LessThan(tx.Total) {
			return ErrInsufficientPayment
		}
		return nil
	})
	if err != nil {
		return err
	}

	final, err := w.gw.Finalize(ctx, tx.TransactionID, paymentMethod, amountPaid)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	if err != nil {
		return w.failLocked(errFinalizeFailed, err)
	}
	if final == nil {
		return w.failLocked(errFinalizeFailed, fmt.Errorf("respuesta vacía"))
	}
	w.tx = completed(tx, *final)
	w.step = StepReceipt
	w.message = msgFinalized
	return nil
}

// Reset descarta la venta completada y vuelve al paso Start con los valores por defecto.
func (w *Wizard) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return ErrBusy
	}
	if w.step != StepReceipt {
		return fmt.Errorf("%w: paso %s", ErrInvalidStep, w.step)
	}
	w.step = StepStart
	w.tx = entity.EmptyTransaction()
	w.message = ""
	return nil
}

// completed toma la copia del servidor como autoritativa y recalcula el cambio.
func completed(local, server entity.Transaction) entity.Transaction {
	out := server.Clone()
	if out.TransactionID == "" {
		out.TransactionID = local.TransactionID
	}
	if out.CustomerID == "" {
		out.CustomerID = local.CustomerID
	}
	if out.BranchID == "" {
		out.BranchID = local.BranchID
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = local.CreatedAt
	}
	out.Change = out.AmountPaid.Sub(out.Total)
	return out
}

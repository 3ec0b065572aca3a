// Package pos casos de uso de las sesiones de caja: cada sesión envuelve un asistente de
// venta (domain/pos.Wizard) y, al completarse la venta, archiva su comprobante.
package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/megamart-analytics/internal/application/dto"
	"github.com/jhoicas/megamart-analytics/internal/application/ports"
	"github.com/jhoicas/megamart-analytics/internal/domain"
	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
	"github.com/jhoicas/megamart-analytics/internal/domain/pos"
	"github.com/jhoicas/megamart-analytics/internal/domain/receipt"
)

// DefaultCallTimeout tope de cada llamada al servicio de ventas.
const DefaultCallTimeout = 15 * time.Second

// Formatos de comprobante descargable.
const (
	ReceiptPDF = "pdf"
	ReceiptXML = "xml"
)

// Acciones registradas en métricas.
const (
	actionBegin     = "begin"
	actionAddItem   = "add_product"
	actionPromotion = "apply_promotion"
	actionPayment   = "proceed_to_payment"
	actionFinalize  = "finalize"
	actionReset     = "reset"
)

// Actor usuario autenticado que opera la sesión.
type Actor struct {
	UserID string
	Admin  bool
}

// StartupSource catálogos del primer paso.
type StartupSource interface {
	ListCustomers(ctx context.Context) ([]entity.Customer, error)
	ListBranches(ctx context.Context) ([]entity.Branch, error)
}

// Deps dependencias del caso de uso.
type Deps struct {
	Gateway     pos.Gateway
	Source      StartupSource
	Sessions    *SessionStore
	Receipts    ports.ReceiptRepository
	Renderer    ports.ReceiptRenderer
	Metrics     ports.Metrics
	Logger      zerolog.Logger
	CallTimeout time.Duration
}

// UseCase operaciones del asistente de caja expuestas por HTTP.
type UseCase struct {
	gw          pos.Gateway
	source      StartupSource
	sessions    *SessionStore
	receipts    ports.ReceiptRepository
	renderer    ports.ReceiptRenderer
	metrics     ports.Metrics
	log         zerolog.Logger
	callTimeout time.Duration
	now         func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(d Deps) *UseCase {
	if d.Metrics == nil {
		d.Metrics = ports.NopMetrics{}
	}
	if d.CallTimeout <= 0 {
		d.CallTimeout = DefaultCallTimeout
	}
	if d.Sessions == nil {
		d.Sessions = NewSessionStore(0)
	}
	return &UseCase{
		gw:          d.Gateway,
		source:      d.Source,
		sessions:    d.Sessions,
		receipts:    d.Receipts,
		renderer:    d.Renderer,
		metrics:     d.Metrics,
		log:         d.Logger.With().Str("component", "pos").Logger(),
		callTimeout: d.CallTimeout,
		now:         time.Now,
	}
}

// CreateSession abre una sesión nueva en el paso Start.
func (uc *UseCase) CreateSession(actor Actor) *dto.SessionDTO {
	sess := uc.sessions.Create(actor.UserID, pos.NewWizard(uc.gw))
	uc.log.Info().Str("session_id", sess.ID).Str("user_id", actor.UserID).Msg("sesión de caja creada")
	return toSessionDTO(sess, sess.Wizard.Snapshot(), uc.now().Add(uc.sessions.ttl))
}

// GetSession estado actual de la sesión.
func (uc *UseCase) GetSession(id string, actor Actor) (*dto.SessionDTO, error) {
	sess, exp, err := uc.session(id, actor)
	if err != nil {
		return nil, err
	}
	return toSessionDTO(sess, sess.Wizard.Snapshot(), exp), nil
}

// Begin inicia la transacción (paso 1 → 2).
func (uc *UseCase) Begin(ctx context.Context, id string, actor Actor, in dto.BeginTransactionRequest) (*dto.SessionDTO, error) {
	return uc.act(ctx, id, actor, actionBegin, func(ctx context.Context, w *pos.Wizard) error {
		return w.Begin(ctx, in.CustomerID, in.BranchID)
	})
}

// AddProduct agrega un producto (paso 2).
func (uc *UseCase) AddProduct(ctx context.Context, id string, actor Actor, in dto.AddProductRequest) (*dto.SessionDTO, error) {
	return uc.act(ctx, id, actor, actionAddItem, func(ctx context.Context, w *pos.Wizard) error {
		return w.AddProduct(ctx, in.ProductID, in.Quantity)
	})
}

// ApplyPromotion aplica un código de promoción (paso 2).
func (uc *UseCase) ApplyPromotion(ctx context.Context, id string, actor Actor, in dto.ApplyPromotionRequest) (*dto.SessionDTO, error) {
	return uc.act(ctx, id, actor, actionPromotion, func(ctx context.Context, w *pos.Wizard) error {
		return w.ApplyPromotion(ctx, in.PromotionCode)
	})
}

// ProceedToPayment paso 2 → 3, local.
func (uc *UseCase) ProceedToPayment(ctx context.Context, id string, actor Actor) (*dto.SessionDTO, error) {
	return uc.act(ctx, id, actor, actionPayment, func(_ context.Context, w *pos.Wizard) error {
		return w.ProceedToPayment()
	})
}

// Finalize registra el pago (paso 3 → 4) y archiva el comprobante. Un fallo al archivar
// no revierte la venta: se registra y el comprobante se regenera al descargarlo.
func (uc *UseCase) Finalize(ctx context.Context, id string, actor Actor, in dto.FinalizeRequest) (*dto.SessionDTO, error) {
	sess, _, err := uc.session(id, actor)
	if err != nil {
		return nil, err
	}
	out, err := uc.act(ctx, id, actor, actionFinalize, func(ctx context.Context, w *pos.Wizard) error {
		return w.Finalize(ctx, in.PaymentMethod, in.AmountPaid)
	})
	if err != nil {
		return out, err
	}
	// El comprobante se emite a nombre del dueño de la sesión, aunque opere un admin.
	if _, aerr := uc.archive(ctx, out.Transaction, sess.OwnerID); aerr != nil {
		uc.log.Error().Err(aerr).Str("transaction_id", out.Transaction.TransactionID).Msg("no se pudo archivar el comprobante")
	}
	return out, nil
}

// Reset paso 4 → 1 con una transacción vacía.
func (uc *UseCase) Reset(ctx context.Context, id string, actor Actor) (*dto.SessionDTO, error) {
	return uc.act(ctx, id, actor, actionReset, func(_ context.Context, w *pos.Wizard) error {
		return w.Reset()
	})
}

// PreviewChange cambio que resultaría de pagar amountPaid sobre el total actual.
func (uc *UseCase) PreviewChange(id string, actor Actor, amountPaid decimal.Decimal) (*dto.ChangePreviewDTO, error) {
	sess, _, err := uc.session(id, actor)
	if err != nil {
		return nil, err
	}
	state := sess.Wizard.Snapshot()
	change := sess.Wizard.PreviewChange(amountPaid)
	return &dto.ChangePreviewDTO{
		AmountPaid: amountPaid.Round(2),
		Total:      state.Transaction.Total.Round(2),
		Change:     change.Round(2),
		CanSubmit:  state.Step == pos.StepPayment && !change.IsNegative(),
	}, nil
}

type customersResult struct {
	rows []entity.Customer
	err  error
}

type branchesResult struct {
	rows []entity.Branch
	err  error
}

// StartupData clientes y sedes del primer paso, en paralelo y sin caché: si falla, el
// cliente reintenta manualmente.
func (uc *UseCase) StartupData(ctx context.Context) (*dto.StartupDataDTO, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()

	custCh := make(chan customersResult, 1)
	brCh := make(chan branchesResult, 1)
	go func() {
		rows, err := uc.source.ListCustomers(ctx)
		custCh <- customersResult{rows, err}
	}()
	go func() {
		rows, err := uc.source.ListBranches(ctx)
		brCh <- branchesResult{rows, err}
	}()
	cust := <-custCh
	br := <-brCh

	if cust.err != nil {
		return nil, fmt.Errorf("datos iniciales: clientes: %w", cust.err)
	}
	if br.err != nil {
		return nil, fmt.Errorf("datos iniciales: sedes: %w", br.err)
	}
	return &dto.StartupDataDTO{Customers: cust.rows, Branches: br.rows}, nil
}

// Receipt comprobante de la venta completada de la sesión en el formato pedido.
// Devuelve el contenido y su content type.
func (uc *UseCase) Receipt(ctx context.Context, id string, actor Actor, format string) ([]byte, string, error) {
	if format != ReceiptPDF && format != ReceiptXML {
		return nil, "", fmt.Errorf("%w: formato %q", domain.ErrInvalidInput, format)
	}
	sess, _, err := uc.session(id, actor)
	if err != nil {
		return nil, "", err
	}
	state := sess.Wizard.Snapshot()
	if state.Step != pos.StepReceipt {
		return nil, "", fmt.Errorf("%w: la venta aún no está completada", pos.ErrInvalidStep)
	}

	rc, err := uc.receiptFor(ctx, state.Transaction, sess.OwnerID)
	if err != nil {
		return nil, "", err
	}
	if format == ReceiptXML {
		b, err := uc.renderer.RenderXML(ctx, rc)
		if err != nil {
			return nil, "", fmt.Errorf("comprobante XML: %w", err)
		}
		return b, "application/xml", nil
	}
	customerName, branchName := uc.displayNames(ctx, rc.Transaction)
	b, err := uc.renderer.RenderPDF(ctx, rc, customerName, branchName)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante PDF: %w", err)
	}
	return b, "application/pdf", nil
}

// ArchivedReceipt comprobante archivado por transaction_id, con su verificación.
func (uc *UseCase) ArchivedReceipt(ctx context.Context, transactionID string) (*dto.ReceiptDTO, error) {
	rc, err := uc.receipts.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return &dto.ReceiptDTO{
		TransactionID:    rc.TransactionID,
		VerificationCode: rc.VerificationCode,
		IssuedAt:         rc.IssuedAt,
		IssuedBy:         rc.IssuedBy,
		Valid:            rc.Verify(),
		Transaction:      rc.Transaction,
	}, nil
}

// act ejecuta una acción del asistente con el tope de tiempo por llamada. Ante error
// devuelve también el estado vigente de la sesión (mensaje en línea incluido).
func (uc *UseCase) act(ctx context.Context, id string, actor Actor, action string, fn func(context.Context, *pos.Wizard) error) (*dto.SessionDTO, error) {
	sess, exp, err := uc.session(id, actor)
	if err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()

	err = fn(callCtx, sess.Wizard)
	uc.metrics.IncWizardTransition(action, err == nil)
	out := toSessionDTO(sess, sess.Wizard.Snapshot(), exp)
	if err != nil {
		uc.log.Warn().Err(err).Str("session_id", id).Str("action", action).Msg("acción de caja rechazada")
		return out, err
	}
	return out, nil
}

func (uc *UseCase) session(id string, actor Actor) (*Session, time.Time, error) {
	sess, exp, err := uc.sessions.Get(id)
	if err != nil {
		return nil, time.Time{}, err
	}
	if !actor.Admin && sess.OwnerID != actor.UserID {
		return nil, time.Time{}, fmt.Errorf("%w: la sesión pertenece a otro usuario", domain.ErrForbidden)
	}
	return sess, exp, nil
}

// receiptFor busca el comprobante archivado; si no existe lo emite y lo archiva.
func (uc *UseCase) receiptFor(ctx context.Context, tx entity.Transaction, issuedBy string) (*receipt.Receipt, error) {
	rc, err := uc.receipts.FindByTransactionID(ctx, tx.TransactionID)
	if err == nil {
		return rc, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return uc.archive(ctx, tx, issuedBy)
}

func (uc *UseCase) archive(ctx context.Context, tx entity.Transaction, issuedBy string) (*receipt.Receipt, error) {
	rc, err := receipt.New(tx, issuedBy, uc.now())
	if err != nil {
		return nil, fmt.Errorf("emitir comprobante: %w", err)
	}
	if err := uc.receipts.Save(ctx, rc); err != nil {
		return nil, fmt.Errorf("archivar comprobante: %w", err)
	}
	return rc, nil
}

// displayNames nombres de cliente y sede para el PDF; si el catálogo no responde se
// usan los identificadores.
func (uc *UseCase) displayNames(ctx context.Context, tx entity.Transaction) (string, string) {
	customerName, branchName := tx.CustomerID, tx.BranchID
	data, err := uc.StartupData(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Msg("comprobante sin nombres de cliente y sede")
		return customerName, branchName
	}
	for _, c := range data.Customers {
		if c.CustomerID == tx.CustomerID && c.Name != "" {
			customerName = c.Name
			break
		}
	}
	for _, b := range data.Branches {
		if b.BranchID == tx.BranchID && b.Name != "" {
			branchName = b.Name
			break
		}
	}
	return customerName, branchName
}

func toSessionDTO(sess *Session, st pos.State, expiresAt time.Time) *dto.SessionDTO {
	return &dto.SessionDTO{
		SessionID:   sess.ID,
		Step:        int(st.Step),
		StepLabel:   st.StepLabel,
		Progress:    st.Progress,
		Transaction: st.Transaction,
		Discounts:   st.Discounts,
		Message:     st.Message,
		IsError:     st.IsError,
		Loading:     st.Loading,
		ExpiresAt:   expiresAt.UTC(),
	}
}

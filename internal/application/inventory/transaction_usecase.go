package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/application/listing"
	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/domain/ledger"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
	"github.com/guilhermesenci/stock-control/pkg/logger"
	"github.com/shopspring/decimal"
)

// lockPrefix espacio de claves del lock por SKU.
const lockPrefix = "stock-control:sku:"

var movementSort = listing.NewRegistry(
	listing.Field[*entity.MovementDetail]{Name: "id", Column: "t.id"},
	listing.Field[*entity.MovementDetail]{Name: "transaction_id", Column: "t.id"},
	listing.Field[*entity.MovementDetail]{Name: "date", Column: "m.occurred_at"},
	listing.Field[*entity.MovementDetail]{Name: "transaction_type", Column: "m.kind"},
	listing.Field[*entity.MovementDetail]{Name: "sku", Column: "t.sku"},
	listing.Field[*entity.MovementDetail]{Name: "description", Column: "i.description"},
	listing.Field[*entity.MovementDetail]{Name: "quantity", Column: "t.quantity"},
	listing.Field[*entity.MovementDetail]{Name: "unit_cost", Column: "t.unit_cost"},
	listing.Field[*entity.MovementDetail]{Name: "total_cost", Column: "(t.quantity * t.unit_cost)"},
	listing.Field[*entity.MovementDetail]{Name: "invoice_ref", Column: "t.invoice_ref"},
	listing.Field[*entity.MovementDetail]{Name: "username", Column: "u.name"},
)

// TransactionUseCase orquesta las mutaciones del libro: cada alta, edición o baja se valida,
// se aplica y recalcula las salidas posteriores dentro de una transacción de BD y bajo el
// lock del SKU.
type TransactionUseCase struct {
	txRunner     TxRunner
	txRepo       repository.TransactionRepository
	itemRepo     repository.ItemRepository
	supplierRepo repository.SupplierRepository
	locker       Locker
	log          *logger.Logger
	now          func() time.Time
}

// NewTransactionUseCase construye el caso de uso.
func NewTransactionUseCase(
	txRunner TxRunner,
	txRepo repository.TransactionRepository,
	itemRepo repository.ItemRepository,
	supplierRepo repository.SupplierRepository,
	locker Locker,
	log *logger.Logger,
) *TransactionUseCase {
	return &TransactionUseCase{
		txRunner:     txRunner,
		txRepo:       txRepo,
		itemRepo:     itemRepo,
		supplierRepo: supplierRepo,
		locker:       locker,
		log:          log.Component("transactions"),
		now:          time.Now,
	}
}

// Create registra una entrada o una salida. Las salidas comprueban disponibilidad y toman
// como costo el promedio ponderado vigente.
func (uc *TransactionUseCase) Create(ctx context.Context, userID int64, in dto.CreateTransactionRequest) (*dto.MutationResponse, error) {
	kind := entity.Kind(in.Kind)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, in.Kind)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity debe ser mayor que 0", domain.ErrInvalidInput)
	}
	unitCost := decimal.Zero
	if kind == entity.KindEntry {
		if in.UnitCost == nil || in.UnitCost.IsNegative() {
			return nil, fmt.Errorf("%w: unit_cost es obligatorio en entradas y no puede ser negativo", domain.ErrInvalidInput)
		}
		unitCost = *in.UnitCost
	}
	occurredAt, err := parseOccurredAt(in.Date, in.Time, uc.now())
	if err != nil {
		return nil, err
	}

	item, err := uc.itemRepo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", in.SKU, domain.ErrNotFound)
	}
	if kind == entity.KindEntry && in.SupplierID != nil {
		if err := uc.ensureSupplier(ctx, uc.supplierRepo, *in.SupplierID); err != nil {
			return nil, err
		}
	}

	m := &entity.Movement{
		Kind: kind,
		Transaction: entity.Transaction{
			InvoiceRef: in.InvoiceRef,
			SKU:        item.SKU,
			Quantity:   in.Quantity,
			UnitCost:   unitCost,
		},
		UserID:     userID,
		OccurredAt: occurredAt,
	}
	if kind == entity.KindEntry {
		m.Transaction.SupplierID = in.SupplierID
	}

	release, err := uc.locker.Lock(ctx, lockPrefix+item.SKU)
	if err != nil {
		return nil, err
	}
	defer release()

	var repriced int
	err = uc.txRunner.Run(ctx, func(txRepo repository.TransactionRepository, _ repository.ItemRepository, _ repository.SupplierRepository) error {
		lines, err := txRepo.Ledger(ctx, item.SKU)
		if err != nil {
			return err
		}
		if kind == entity.KindExit {
			av := ledger.ValidateStockAvailability(lines, m.Transaction.Quantity)
			if !av.Valid {
				return domain.NewRuleError(domain.ErrInsufficientStock, av.Message)
			}
		}
		uc.warnIfBackdated(lines, m)

		if err := txRepo.Create(ctx, m); err != nil {
			return err
		}
		if kind == entity.KindEntry {
			return nil
		}
		// Los IDs son monótonos: la nueva salida es la única posterior a ID-1.
		lines = append(lines, ledger.LineFromMovement(m))
		reps := ledger.Recalculate(lines, m.Transaction.ID-1)
		if err := txRepo.UpdateUnitCosts(ctx, reps); err != nil {
			return err
		}
		for _, r := range reps {
			if r.TransactionID == m.Transaction.ID {
				m.Transaction.UnitCost = r.UnitCost
			}
		}
		repriced = len(reps)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("id", m.CompositeID().String()).
		Str("sku", item.SKU).
		Str("quantity", m.Transaction.Quantity.String()).
		Str("unit_cost", m.Transaction.UnitCost.String()).
		Msg("movimiento registrado")

	detail, err := uc.detail(ctx, m.CompositeID())
	if err != nil {
		return nil, err
	}
	resp := toTransactionResponse(detail)
	return &dto.MutationResponse{
		Message:           fmt.Sprintf("%s registered", kind),
		Transaction:       &resp,
		RecalculatedExits: repriced,
	}, nil
}

// Update edita un movimiento. Entradas: cantidad, costo, factura y proveedor. Salidas: cantidad
// y costo. Un cambio de cantidad se valida reproduciendo el libro; después se recalculan las
// salidas posteriores sea cual sea el tipo.
func (uc *TransactionUseCase) Update(ctx context.Context, compositeID string, in dto.UpdateTransactionRequest) (*dto.MutationResponse, error) {
	if in.Quantity != nil && !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity debe ser mayor que 0", domain.ErrInvalidInput)
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: unit_cost no puede ser negativo", domain.ErrInvalidInput)
	}
	m, err := uc.resolve(ctx, compositeID)
	if err != nil {
		return nil, err
	}

	release, err := uc.locker.Lock(ctx, lockPrefix+m.Transaction.SKU)
	if err != nil {
		return nil, err
	}
	defer release()

	var repriced int
	err = uc.txRunner.Run(ctx, func(txRepo repository.TransactionRepository, _ repository.ItemRepository, supplierRepo repository.SupplierRepository) error {
		// Releer bajo el lock: otro escritor pudo cambiarlo entre resolve y Lock.
		current, err := txRepo.GetByCompositeID(ctx, m.CompositeID())
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("movimiento %s: %w", m.CompositeID(), domain.ErrNotFound)
		}
		m = current
		tx := &m.Transaction

		lines, err := txRepo.Ledger(ctx, tx.SKU)
		if err != nil {
			return err
		}
		if in.Quantity != nil && !in.Quantity.Equal(tx.Quantity) {
			check := ledger.ValidateOperation(lines, ledger.OpEdit, tx.ID, in.Quantity)
			if !check.Valid {
				return domain.NewRuleError(domain.ErrNegativeStock, check.Message)
			}
			tx.Quantity = *in.Quantity
		}
		if in.UnitCost != nil {
			tx.UnitCost = *in.UnitCost
		}
		if m.IsEntry() {
			if in.InvoiceRef != nil {
				tx.InvoiceRef = *in.InvoiceRef
			}
			if in.SupplierID != nil {
				if err := uc.ensureSupplier(ctx, supplierRepo, *in.SupplierID); err != nil {
					return err
				}
				tx.SupplierID = in.SupplierID
			}
		}
		if err := txRepo.Update(ctx, tx); err != nil {
			return err
		}
		repriced, err = uc.reprice(ctx, txRepo, tx.SKU, tx.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	detail, err := uc.detail(ctx, m.CompositeID())
	if err != nil {
		return nil, err
	}
	resp := toTransactionResponse(detail)
	return &dto.MutationResponse{
		Message:           fmt.Sprintf("%s updated", m.CompositeID()),
		Transaction:       &resp,
		RecalculatedExits: repriced,
	}, nil
}

// Delete borra un movimiento si el libro resultante no queda negativo en ningún prefijo y
// recalcula las salidas posteriores. Entradas y salidas siguen la misma regla.
func (uc *TransactionUseCase) Delete(ctx context.Context, compositeID string) (*dto.MutationResponse, error) {
	m, err := uc.resolve(ctx, compositeID)
	if err != nil {
		return nil, err
	}

	release, err := uc.locker.Lock(ctx, lockPrefix+m.Transaction.SKU)
	if err != nil {
		return nil, err
	}
	defer release()

	var repriced int
	err = uc.txRunner.Run(ctx, func(txRepo repository.TransactionRepository, _ repository.ItemRepository, _ repository.SupplierRepository) error {
		current, err := txRepo.GetByCompositeID(ctx, m.CompositeID())
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("movimiento %s: %w", m.CompositeID(), domain.ErrNotFound)
		}
		tx := current.Transaction

		lines, err := txRepo.Ledger(ctx, tx.SKU)
		if err != nil {
			return err
		}
		check := ledger.ValidateOperation(lines, ledger.OpDelete, tx.ID, nil)
		if !check.Valid {
			return domain.NewRuleError(domain.ErrNegativeStock, check.Message)
		}
		if err := txRepo.Delete(ctx, tx.ID); err != nil {
			return err
		}
		repriced, err = uc.reprice(ctx, txRepo, tx.SKU, tx.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("id", m.CompositeID().String()).
		Str("sku", m.Transaction.SKU).
		Int("recalculated_exits", repriced).
		Msg("movimiento eliminado")

	return &dto.MutationResponse{
		Message:           fmt.Sprintf("%s deleted", m.CompositeID()),
		RecalculatedExits: repriced,
	}, nil
}

// Get devuelve un movimiento por su ID compuesto.
func (uc *TransactionUseCase) Get(ctx context.Context, compositeID string) (*dto.TransactionResponse, error) {
	cid, err := entity.ParseCompositeID(compositeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	detail, err := uc.detail(ctx, cid)
	if err != nil {
		return nil, err
	}
	resp := toTransactionResponse(detail)
	return &resp, nil
}

// List listado unificado de entradas y salidas.
func (uc *TransactionUseCase) List(ctx context.Context, in dto.TransactionListRequest) (*dto.TransactionListResponse, error) {
	loc := uc.now().Location()
	from, err := parseOptionalDate(in.DateFrom, loc)
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalDate(in.DateTo, loc)
	if err != nil {
		return nil, err
	}
	kind := entity.Kind(in.Kind)
	if in.Kind != "" && !kind.Valid() {
		return nil, fmt.Errorf("%w: kind %q", domain.ErrInvalidInput, in.Kind)
	}
	sort, err := movementSort.Parse(in.Ordering)
	if err != nil {
		return nil, err
	}
	page := in.PageOf()

	list, total, err := uc.txRepo.List(ctx, repository.MovementFilter{
		Kind:        kind,
		SKU:         in.SKU,
		Description: in.Description,
		InvoiceRef:  in.InvoiceRef,
		DateFrom:    from,
		DateTo:      to,
	}, repository.ListOptions{Sort: sort, Limit: page.Size, Offset: page.Offset()})
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransactionResponse, 0, len(list))
	for _, d := range list {
		items = append(items, toTransactionResponse(d))
	}
	return &dto.TransactionListResponse{Items: items, Page: dto.NewPageResponse(page, total)}, nil
}

// Validate simula borrar o editar una transacción sin mutar el libro.
func (uc *TransactionUseCase) Validate(ctx context.Context, in dto.ValidateOperationRequest) (*dto.ValidationResponse, error) {
	op := ledger.Operation(in.OperationType)
	if !op.Valid() {
		return nil, fmt.Errorf("%w: operation_type %q", domain.ErrInvalidInput, in.OperationType)
	}
	lines, err := uc.txRepo.Ledger(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if !containsTransaction(lines, in.TransactionID) {
		return nil, fmt.Errorf("transacción %d del item %s: %w", in.TransactionID, in.SKU, domain.ErrNotFound)
	}
	check := ledger.ValidateOperation(lines, op, in.TransactionID, in.NewQuantity)
	out := &dto.ValidationResponse{Valid: check.Valid, Message: check.Message}
	if check.Valid {
		out.FinalStock = &check.FinalStock
	} else {
		out.FailedTransactionID = &check.FailedTransactionID
		out.StockAtFailure = &check.StockAtFailure
	}
	return out, nil
}

// CheckAvailability indica si hay stock para una salida de la cantidad pedida.
func (uc *TransactionUseCase) CheckAvailability(ctx context.Context, in dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	item, err := uc.itemRepo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", in.SKU, domain.ErrNotFound)
	}
	lines, err := uc.txRepo.Ledger(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	av := ledger.ValidateStockAvailability(lines, in.Quantity)
	return &dto.AvailabilityResponse{
		Valid:     av.Valid,
		Message:   av.Message,
		Available: av.Available,
		Requested: av.Requested,
	}, nil
}

// Recalculate recalcula a pedido las salidas posteriores a transactionID.
func (uc *TransactionUseCase) Recalculate(ctx context.Context, in dto.RecalculateRequest) (*dto.RecalculateResponse, error) {
	item, err := uc.itemRepo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", in.SKU, domain.ErrNotFound)
	}

	release, err := uc.locker.Lock(ctx, lockPrefix+item.SKU)
	if err != nil {
		return nil, err
	}
	defer release()

	var repriced int
	err = uc.txRunner.Run(ctx, func(txRepo repository.TransactionRepository, _ repository.ItemRepository, _ repository.SupplierRepository) error {
		var err error
		repriced, err = uc.reprice(ctx, txRepo, item.SKU, in.TransactionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.RecalculateResponse{
		Message:      fmt.Sprintf("%d exits recalculated", repriced),
		UpdatedExits: repriced,
	}, nil
}

// reprice carga el libro, recalcula desde pivot y persiste los nuevos costos.
func (uc *TransactionUseCase) reprice(ctx context.Context, txRepo repository.TransactionRepository, sku string, pivot int64) (int, error) {
	lines, err := txRepo.Ledger(ctx, sku)
	if err != nil {
		return 0, err
	}
	reps := ledger.Recalculate(lines, pivot)
	if err := txRepo.UpdateUnitCosts(ctx, reps); err != nil {
		return 0, err
	}
	uc.log.Debug().Str("sku", sku).Int64("pivot", pivot).Int("exits", len(reps)).Msg("costos de salidas recalculados")
	return len(reps), nil
}

// detail carga el movimiento con item y usuario unidos.
func (uc *TransactionUseCase) detail(ctx context.Context, cid entity.CompositeID) (*entity.MovementDetail, error) {
	d, err := uc.txRepo.GetDetail(ctx, cid)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("movimiento %s: %w", cid, domain.ErrNotFound)
	}
	return d, nil
}

// resolve interpreta el ID compuesto y carga el movimiento.
func (uc *TransactionUseCase) resolve(ctx context.Context, compositeID string) (*entity.Movement, error) {
	cid, err := entity.ParseCompositeID(compositeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	m, err := uc.txRepo.GetByCompositeID(ctx, cid)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("movimiento %s: %w", cid, domain.ErrNotFound)
	}
	return m, nil
}

func (uc *TransactionUseCase) ensureSupplier(ctx context.Context, repo repository.SupplierRepository, id int64) error {
	s, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("proveedor %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// warnIfBackdated registra movimientos con fecha anterior al último del item: el orden por ID
// y el orden por fecha dejan de coincidir y la valuación a fecha puede diferir del recálculo.
func (uc *TransactionUseCase) warnIfBackdated(lines []ledger.Line, m *entity.Movement) {
	var latest time.Time
	for _, l := range lines {
		if l.Date.After(latest) {
			latest = l.Date
		}
	}
	if !latest.IsZero() && m.OccurredAt.Before(latest) {
		uc.log.Warn().
			Str("sku", m.Transaction.SKU).
			Time("occurred_at", m.OccurredAt).
			Time("latest", latest).
			Msg("movimiento con fecha anterior al último registrado")
	}
}

func containsTransaction(lines []ledger.Line, id int64) bool {
	for _, l := range lines {
		if l.TransactionID == id {
			return true
		}
	}
	return false
}

func toTransactionResponse(d *entity.MovementDetail) dto.TransactionResponse {
	tx := d.Transaction
	return dto.TransactionResponse{
		ID:            d.CompositeID().String(),
		TransactionID: tx.ID,
		Kind:          string(d.Kind),
		Date:          d.OccurredAt.Format("2006-01-02"),
		Time:          d.OccurredAt.Format("15:04:05"),
		SKU:           tx.SKU,
		Description:   d.ItemDescription,
		Quantity:      tx.Quantity,
		UnitMeasure:   d.UnitMeasure,
		UnitCost:      tx.UnitCost,
		TotalCost:     tx.Quantity.Mul(tx.UnitCost).RoundBank(ledger.CostPlaces),
		InvoiceRef:    tx.InvoiceRef,
		SupplierID:    tx.SupplierID,
		UserID:        d.UserID,
		Username:      d.UserName,
	}
}

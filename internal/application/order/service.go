package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oms/backend/internal/domain/billing"
	"github.com/oms/backend/internal/domain/numbering"
	"github.com/oms/backend/internal/domain/order"
	"github.com/oms/backend/internal/domain/shared"
)

// OrderService orchestrates the order lifecycle: creation with document-number
// allocation, the status state machine and its side effects, and the plain
// CRUD surface around the aggregate.
type OrderService struct {
	orderRepo order.Repository
	sequences numbering.SequenceAllocator
	refs      order.ReferenceChecker
	txScope   TransactionScope
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.Repository, sequences numbering.SequenceAllocator, refs order.ReferenceChecker, txScope TransactionScope) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		sequences: sequences,
		refs:      refs,
		txScope:   txScope,
	}
}

// Create creates a new sales order. A document number is reserved for the
// order's company before the insert; the reservation commits independently,
// so a failed insert leaves a gap in the sequence rather than a reused number.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	company, err := order.ParseCompany(req.Company)
	if err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, req.ClientID, req.ContactPersonID, req.CheckedBy); err != nil {
		return nil, err
	}

	exists, err := s.orderRepo.ExistsByOrderNo(ctx, req.OrderNo, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Order number already exists: "+req.OrderNo)
	}

	reservation, err := s.sequences.Reserve(ctx, company.String())
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(
		company,
		reservation.DocumentNumber,
		req.OrderNo,
		req.ClientID,
		req.ContactPersonID,
		req.CheckedBy,
		req.TotalAmount,
		req.Remark,
		order.OrderStatus(req.Status),
	)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// RequestTransition moves an order to the target status. The order is read
// under a row lock and re-checked against the transition table inside the
// same transaction that writes the new status, so two concurrent requests
// can never both succeed against a stale snapshot. Invoice issuance for the
// invoiced target happens inside the same transaction; its failure rolls the
// whole transition back.
func (s *OrderService) RequestTransition(ctx context.Context, orderNo string, target order.OrderStatus, actor uuid.UUID, extra map[string]string) (*TransitionResponse, error) {
	if !target.IsValid() || target == order.StatusPending {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown target status: "+target.String())
	}

	var resp TransitionResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByOrderNoForUpdate(ctx, orderNo)
		if err != nil {
			return err
		}

		if err := s.applyTransition(ctx, repos, o, target, actor, extra); err != nil {
			return err
		}

		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}

		resp = TransitionResponse{OrderID: o.ID, Status: o.Status.String()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// applyTransition dispatches to the per-status aggregate method, gathering
// status-specific required fields from the extra bag. Transition legality is
// checked before any field validation, so an illegal target reports
// INVALID_TRANSITION even when required fields are also absent or invalid.
func (s *OrderService) applyTransition(ctx context.Context, repos TransactionalRepositories, o *order.Order, target order.OrderStatus, actor uuid.UUID, extra map[string]string) error {
	if !o.Status.CanTransitionTo(target) {
		return order.NewInvalidTransitionError(o.Status, target)
	}

	switch target {
	case order.StatusDispatched:
		dispatchedBy, err := parseUserExtra(extra, ExtraDispatchedBy)
		if err != nil {
			return err
		}
		ok, err := s.refs.UserExists(ctx, dispatchedBy)
		if err != nil {
			return err
		}
		if !ok {
			return shared.NewDomainError("NOT_FOUND", "User not found")
		}
		return o.Dispatch(dispatchedBy, actor)

	case order.StatusInvoiced:
		return s.issueInvoice(ctx, repos, o, actor, extra)

	case order.StatusCompleted:
		return o.MarkCompleted()
	case order.StatusPartialPending:
		return o.MarkPartialPending()
	case order.StatusOutOfStock:
		return o.MarkOutOfStock()
	case order.StatusShortClosed:
		return o.ShortClose()
	case order.StatusCancelled:
		return o.Cancel()
	}
	return shared.NewDomainError("INVALID_INPUT", "Unknown target status: "+target.String())
}

// issueInvoice creates the invoice row for the invoiced transition and links
// it back onto the order. Runs inside the transition's transaction.
func (s *OrderService) issueInvoice(ctx context.Context, repos TransactionalRepositories, o *order.Order, actor uuid.UUID, extra map[string]string) error {
	invoiceNumber, ok := extra[ExtraInvoiceNumber]
	if !ok || invoiceNumber == "" {
		return order.NewMissingFieldError(ExtraInvoiceNumber)
	}
	invoiceDateStr, ok := extra[ExtraInvoiceDate]
	if !ok || invoiceDateStr == "" {
		return order.NewMissingFieldError(ExtraInvoiceDate)
	}
	invoiceDate, err := time.Parse(InvoiceDateLayout, invoiceDateStr)
	if err != nil {
		return shared.NewDomainError("INVALID_INPUT", "Invalid invoice_date, expected YYYY-MM-DD: "+invoiceDateStr)
	}

	taken, err := repos.InvoiceRepo().ExistsByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return err
	}
	if taken {
		return billing.NewDuplicateInvoiceNumberError(invoiceNumber)
	}

	inv, err := billing.NewInvoice(o.ID, invoiceNumber, invoiceDate, actor)
	if err != nil {
		return err
	}
	if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
		return err
	}

	return o.MarkInvoiced(inv.ID)
}

// AllowedNextStatuses returns the order's current status and the transition
// table lookup. Pure read; terminal states yield an empty list.
func (s *OrderService) AllowedNextStatuses(ctx context.Context, orderID uuid.UUID) (*AllowedNextResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	allowed := make([]string, 0)
	for _, next := range o.Status.AllowedNext() {
		allowed = append(allowed, next.String())
	}
	return &AllowedNextResponse{Current: o.Status.String(), Allowed: allowed}, nil
}

// GetByID retrieves an order by its surrogate ID
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByOrderNo retrieves an order by its external reference
func (s *OrderService) GetByOrderNo(ctx context.Context, orderNo string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.DefaultFilter()
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	if filter.Company != "" {
		domainFilter.Filters["company"] = numbering.NormalizePrefix(filter.Company)
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.ClientID != "" {
		clientID, err := uuid.Parse(filter.ClientID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "Invalid client_id filter")
		}
		domainFilter.Filters["client_id"] = clientID
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderResponse(&orders[i]))
	}
	return responses, total, nil
}

// Update applies a full-field edit. order_no uniqueness is re-validated
// excluding the order itself; so_no and company are immutable.
func (s *OrderService) Update(ctx context.Context, orderID uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, req.ClientID, req.ContactPersonID, req.CheckedBy); err != nil {
		return nil, err
	}

	if req.OrderNo != o.OrderNo {
		exists, err := s.orderRepo.ExistsByOrderNo(ctx, req.OrderNo, o.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Order number already exists: "+req.OrderNo)
		}
	}

	if err := o.UpdateDetails(req.OrderNo, req.ClientID, req.ContactPersonID, req.CheckedBy, req.TotalAmount, req.Remark); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// Delete removes an order unconditionally, regardless of its status.
// The final state is returned to the caller as a last snapshot.
func (s *OrderService) Delete(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// StatusSummary returns order counts grouped by status
func (s *OrderService) StatusSummary(ctx context.Context) (*StatusSummaryResponse, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	resp := &StatusSummaryResponse{Counts: make(map[string]int64, len(counts))}
	for status, n := range counts {
		resp.Counts[status.String()] = n
		resp.Total += n
	}
	return resp, nil
}

// checkReferences validates that the foreign identities an order points at
// actually exist
func (s *OrderService) checkReferences(ctx context.Context, clientID, contactPersonID, checkedBy uuid.UUID) error {
	ok, err := s.refs.ClientExists(ctx, clientID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NewDomainError("NOT_FOUND", "Client not found")
	}

	ok, err = s.refs.ContactPersonExists(ctx, contactPersonID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NewDomainError("NOT_FOUND", "Contact person not found")
	}

	ok, err = s.refs.UserExists(ctx, checkedBy)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NewDomainError("NOT_FOUND", "User not found")
	}
	return nil
}

// parseUserExtra reads a user identity from the extra bag
func parseUserExtra(extra map[string]string, key string) (uuid.UUID, error) {
	raw, ok := extra[key]
	if !ok || raw == "" {
		return uuid.Nil, order.NewMissingFieldError(key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, shared.NewDomainError("INVALID_INPUT", "Invalid "+key+": must be a UUID")
	}
	return id, nil
}

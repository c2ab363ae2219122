package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"phonestore-crm/internal/cache"
	"phonestore-crm/internal/core"
	"phonestore-crm/internal/documents"
	"phonestore-crm/internal/events"
)

const productCachePrefix = "products:"

// Services groups the core services the application layer coordinates.
type Services struct {
	Users    core.UserService
	Products core.ProductService
	Orders   core.OrderService
	Ledger   core.DebtLedgerService
	Reports  core.ReportingService
}

type appService struct {
	svc    Services
	cache  *cache.Store
	events events.Publisher
	store  documents.Store
}

// NewAppService constructs an appService that satisfies ApplicationService.
// A nil cache disables caching; a nil publisher discards events.
func NewAppService(svc Services, store *cache.Store, pub events.Publisher, info documents.Store) ApplicationService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &appService{svc: svc, cache: store, events: pub, store: info}
}

// ── Authorization helpers ────────────────────────────────────────────────────

func forbidden(msg string) error { return &core.AuthorizationError{Message: msg} }

func requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return forbidden("Admin access required")
	}
	return nil
}

// requireSelfOrAdmin allows admins and the user identified by userID.
func requireSelfOrAdmin(actor Actor, userID int) error {
	if actor.IsAdmin() || actor.UserID == userID {
		return nil
	}
	return forbidden("You can only access your own data")
}

func (s *appService) publish(ctx context.Context, key string, data any) {
	if err := s.events.Publish(ctx, key, data); err != nil {
		log.Warn().Err(err).Str("event", key).Msg("event publish failed")
	}
}

// ── Users ────────────────────────────────────────────────────────────────────

func (s *appService) Login(ctx context.Context, email, password string) (*core.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, core.NewValidationError("Email and password are required")
	}
	return s.svc.Users.Authenticate(ctx, email, password)
}

func (s *appService) GetUser(ctx context.Context, actor Actor, userID int) (*core.User, error) {
	if err := requireSelfOrAdmin(actor, userID); err != nil {
		return nil, err
	}
	return s.svc.Users.GetByID(ctx, userID)
}

func (s *appService) ListUsers(ctx context.Context, actor Actor, req UserListRequest) (*UserListResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, total, err := s.svc.Users.ListUsers(ctx, req.Role, req.Page, req.Limit)
	if err != nil {
		return nil, err
	}
	return &UserListResult{Users: users, Total: total, Page: req.Page, Limit: req.Limit}, nil
}

func (s *appService) CreateUser(ctx context.Context, actor Actor, req CreateUserRequest) (*core.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	u, err := s.svc.Users.CreateUser(ctx, core.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int("user_id", u.ID).Str("role", u.Role).Int("actor_id", actor.UserID).Msg("user created")
	return u, nil
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context, req ProductListRequest) (*ProductListResult, error) {
	key := fmt.Sprintf("%slist:%s:%d:%d", productCachePrefix, req.Category, req.Page, req.Limit)
	var cached ProductListResult
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	products, total, err := s.svc.Products.ListProducts(ctx, core.ProductFilter{
		Category: req.Category,
		Page:     req.Page,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, err
	}
	res := &ProductListResult{Products: products, Total: total, Page: req.Page, Limit: req.Limit}
	s.cache.Set(ctx, key, res)
	return res, nil
}

func (s *appService) GetProduct(ctx context.Context, productID int) (*core.Product, error) {
	return s.svc.Products.GetProduct(ctx, productID)
}

func (r ProductRequest) input() core.ProductInput {
	return core.ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		Category:      r.Category,
		StockQuantity: r.StockQuantity,
		StockStatus:   r.StockStatus,
	}
}

func (s *appService) CreateProduct(ctx context.Context, actor Actor, req ProductRequest) (*core.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	p, err := s.svc.Products.CreateProduct(ctx, req.input())
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, productCachePrefix)
	return p, nil
}

func (s *appService) UpdateProduct(ctx context.Context, actor Actor, productID int, req ProductRequest) (*core.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	p, err := s.svc.Products.UpdateProduct(ctx, productID, req.input())
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, productCachePrefix)
	return p, nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *appService) CreateOrder(ctx context.Context, actor Actor, req CreateOrderRequest) (*OrderResult, error) {
	in := core.CreateOrderInput{Status: req.Status, CreatedBy: actor.UserID}
	for _, l := range req.Items {
		in.Lines = append(in.Lines, core.OrderLineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	isGuest := req.ClientID == nil && strings.TrimSpace(req.GuestName+req.GuestEmail+req.GuestPhone) != ""
	switch {
	case req.ClientID != nil:
		if *req.ClientID != actor.UserID && !actor.IsAdmin() {
			return nil, forbidden("Only admins can create orders for other clients")
		}
		in.ClientID = req.ClientID
	case isGuest:
		if !actor.IsAdmin() {
			return nil, forbidden("Only admins can create guest orders")
		}
		in.Guest = &core.GuestInfo{Name: strings.TrimSpace(req.GuestName), Email: req.GuestEmail, Phone: req.GuestPhone}
	default:
		self := actor.UserID
		in.ClientID = &self
	}
	if in.Status != "" && in.Status != core.StatusPending && !actor.IsAdmin() {
		return nil, forbidden("Only admins can set the order status")
	}

	order, err := s.svc.Orders.CreateOrder(ctx, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, productCachePrefix)
	s.publish(ctx, events.OrderCreated, events.OrderEvent{
		OrderID:     order.ID,
		ClientID:    order.ClientID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		ActorID:     actor.UserID,
	})
	return &OrderResult{Order: order}, nil
}

func (s *appService) UpdateOrder(ctx context.Context, actor Actor, orderID int, req UpdateOrderRequest) (*UpdateOrderResult, error) {
	if req.Items != nil && len(req.Items) == 0 {
		return nil, core.NewValidationError("Validation failed", core.FieldError{Field: "items", Message: "at least one item is required"})
	}
	if !actor.IsAdmin() {
		existing, err := s.svc.Orders.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if existing.ClientID == nil || *existing.ClientID != actor.UserID {
			return nil, forbidden("You can only edit your own orders")
		}
		if existing.Status != core.StatusPending {
			return nil, forbidden("Only pending orders can be edited")
		}
		if req.Status != nil && *req.Status != core.StatusPending {
			return nil, forbidden("Only admins can change the order status")
		}
		if err := s.requireCatalogPrices(ctx, req.Items); err != nil {
			return nil, err
		}
	}

	in := core.UpdateOrderInput{Status: req.Status, ActorID: actor.UserID}
	if !actor.IsAdmin() {
		// Core re-checks ownership, status, and prices under the order lock.
		in.OwnerID = actor.UserID
	}
	if req.Items != nil {
		in.ReplaceItems = true
		for _, l := range req.Items {
			in.Items = append(in.Items, core.ReplacementLine{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price})
		}
	}

	res, err := s.svc.Orders.UpdateOrder(ctx, orderID, in)
	if err != nil {
		return nil, err
	}
	if res.ItemsUpdated {
		s.cache.Invalidate(ctx, productCachePrefix)
	}
	s.publish(ctx, events.OrderUpdated, events.OrderEvent{
		OrderID:      res.Order.ID,
		ClientID:     res.Order.ClientID,
		Status:       res.Order.Status,
		TotalAmount:  res.Order.TotalAmount,
		ItemsUpdated: res.ItemsUpdated,
		ActorID:      actor.UserID,
	})
	return &UpdateOrderResult{Order: res.Order, ItemsUpdated: res.ItemsUpdated}, nil
}

// requireCatalogPrices rejects replacement lines whose price differs from the product's
// current price. Negotiated prices are an admin power.
func (s *appService) requireCatalogPrices(ctx context.Context, lines []ReplacementLineRequest) error {
	for _, l := range lines {
		p, err := s.svc.Products.GetProduct(ctx, l.ProductID)
		if err != nil {
			return err
		}
		if !l.Price.Equal(p.Price) {
			return forbidden(fmt.Sprintf("Only admins can change the price of %q", p.Name))
		}
	}
	return nil
}

func (s *appService) DeleteOrder(ctx context.Context, actor Actor, orderID int) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.svc.Orders.DeleteOrder(ctx, orderID, actor.UserID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, productCachePrefix)
	s.publish(ctx, events.OrderDeleted, events.OrderEvent{OrderID: orderID, ActorID: actor.UserID})
	return nil
}

func (s *appService) GetOrder(ctx context.Context, actor Actor, orderID int) (*OrderResult, error) {
	order, err := s.svc.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && (order.ClientID == nil || *order.ClientID != actor.UserID) {
		// Hide other clients' orders entirely.
		return nil, &core.NotFoundError{Entity: "Order"}
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) ListOrders(ctx context.Context, actor Actor, req OrderListRequest) (*OrderListResult, error) {
	f := core.OrderFilter{Status: req.Status, Page: req.Page, Limit: req.Limit}
	if !actor.IsAdmin() {
		self := actor.UserID
		f.ClientID = &self
	}
	orders, total, err := s.svc.Orders.ListOrders(ctx, f)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders, Total: total, Page: req.Page, Limit: req.Limit}, nil
}

// ── Debt ─────────────────────────────────────────────────────────────────────

func (s *appService) GetDebt(ctx context.Context, actor Actor, userID int) (*core.DebtSummary, error) {
	if err := requireSelfOrAdmin(actor, userID); err != nil {
		return nil, err
	}
	return s.svc.Ledger.Summary(ctx, userID)
}

func (s *appService) ListDebtAdjustments(ctx context.Context, actor Actor, userID int) (*DebtHistoryResult, error) {
	if err := requireSelfOrAdmin(actor, userID); err != nil {
		return nil, err
	}
	summary, err := s.svc.Ledger.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.svc.Ledger.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &DebtHistoryResult{Summary: summary, Adjustments: history}, nil
}

func (s *appService) AdjustDebt(ctx context.Context, actor Actor, userID int, req AdjustDebtRequest) (*core.DebtAdjustment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	adjType := req.Type
	if adjType == "" {
		adjType = core.AdjustmentManualReduction
		if req.Amount.IsNegative() {
			adjType = core.AdjustmentManualIncrease
		}
	}
	createdBy := actor.UserID
	adj, err := s.svc.Ledger.Adjust(ctx, core.DebtAdjustment{
		UserID:    userID,
		Amount:    req.Amount,
		Currency:  core.Currency(strings.ToUpper(req.Currency)),
		Type:      adjType,
		Notes:     req.Notes,
		CreatedBy: &createdBy,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int("user_id", userID).Str("amount", adj.Amount.String()).Str("currency", string(adj.Currency)).
		Int("actor_id", actor.UserID).Msg("debt adjusted")
	s.publish(ctx, events.DebtAdjusted, events.DebtEvent{
		UserID:   userID,
		Amount:   adj.Amount,
		Currency: string(adj.Currency),
		Type:     adj.Type,
		ActorID:  actor.UserID,
	})
	return adj, nil
}

func (s *appService) GetUserStats(ctx context.Context, actor Actor, userID int) (*core.UserStats, error) {
	if err := requireSelfOrAdmin(actor, userID); err != nil {
		return nil, err
	}
	return s.svc.Reports.UserStats(ctx, userID)
}

func (s *appService) OutstandingDebts(ctx context.Context, actor Actor) (*OutstandingDebtResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	debts, err := s.svc.Ledger.Outstanding(ctx)
	if err != nil {
		return nil, err
	}
	return &OutstandingDebtResult{Debts: debts}, nil
}

// ── Documents ────────────────────────────────────────────────────────────────

func (s *appService) InvoicePDF(ctx context.Context, actor Actor, orderID int) ([]byte, error) {
	res, err := s.GetOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	return documents.RenderInvoice(s.store, res.Order)
}

func (s *appService) DebtReportPDF(ctx context.Context, actor Actor) ([]byte, error) {
	res, err := s.OutstandingDebts(ctx, actor)
	if err != nil {
		return nil, err
	}
	return documents.RenderDebtReport(s.store, res.Debts, time.Now())
}

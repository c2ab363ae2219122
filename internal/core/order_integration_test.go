package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"phonestore-crm/internal/core"
)

func TestOrderService_CreateClientOrder(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, ledger := newServices(pool)
	ctx := context.Background()

	order, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID:  intPtr(clientID),
		Lines:     []core.OrderLineInput{{ProductID: phoneID, Quantity: 2}},
		CreatedBy: adminID,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if order.Status != core.StatusPending {
		t.Errorf("Expected pending, got %s", order.Status)
	}
	if !order.TotalAmount.Equal(dec("1000")) {
		t.Errorf("Expected total 1000, got %s", order.TotalAmount)
	}
	if len(order.Items) != 1 || !order.Items[0].Price.Equal(dec("500")) {
		t.Fatalf("Expected one item at price 500, got %+v", order.Items)
	}
	if got := stockOf(t, pool, phoneID); got != 8 {
		t.Errorf("Expected stock 8, got %d", got)
	}

	history, err := ledger.History(ctx, clientID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 ledger entry, got %d", len(history))
	}
	e := history[0]
	if e.Currency != core.CurrencyEUR || !e.Amount.Equal(dec("-1000")) || e.Type != core.AdjustmentOrderCreated {
		t.Errorf("Unexpected ledger entry: %+v", e)
	}
	if e.OrderID == nil || *e.OrderID != order.ID {
		t.Errorf("Ledger entry should reference order %d", order.ID)
	}

	summary, err := ledger.Summary(ctx, clientID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !summary.EURDebt.Equal(dec("1000")) || !summary.MKDDebt.IsZero() {
		t.Errorf("Expected debt 1000 EUR / 0 MKD, got %s / %s", summary.EURDebt, summary.MKDDebt)
	}
}

func TestOrderService_MixedCurrencyOrderWritesOneEntryPerCurrency(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, ledger := newServices(pool)
	ctx := context.Background()

	_, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID: intPtr(clientID),
		Lines: []core.OrderLineInput{
			{ProductID: phoneID, Quantity: 1},
			{ProductID: chargerID, Quantity: 3},
		},
		CreatedBy: adminID,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	summary, err := ledger.Summary(ctx, clientID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !summary.EURDebt.Equal(dec("500")) || !summary.MKDDebt.Equal(dec("150")) {
		t.Errorf("Expected 500 EUR / 150 MKD, got %s / %s", summary.EURDebt, summary.MKDDebt)
	}
	if n := countRows(t, pool, "SELECT COUNT(*) FROM user_debt_adjustments WHERE user_id = $1", clientID); n != 2 {
		t.Errorf("Expected 2 ledger entries, got %d", n)
	}
}

func TestOrderService_GuestAndCompletedOrdersWriteNoLedger(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, _ := newServices(pool)
	ctx := context.Background()

	guest, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		Guest:     &core.GuestInfo{Name: "Walk-in", Phone: "+389 2 000 000"},
		Lines:     []core.OrderLineInput{{ProductID: chargerID, Quantity: 1}},
		CreatedBy: adminID,
	})
	if err != nil {
		t.Fatalf("guest CreateOrder failed: %v", err)
	}
	if !guest.IsGuest() || guest.GuestName == nil || *guest.GuestName != "Walk-in" {
		t.Errorf("Expected guest order, got %+v", guest)
	}

	_, err = orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID:  intPtr(clientID),
		Status:    core.StatusCompleted,
		Lines:     []core.OrderLineInput{{ProductID: phoneID, Quantity: 1}},
		CreatedBy: adminID,
	})
	if err != nil {
		t.Fatalf("completed CreateOrder failed: %v", err)
	}

	if n := countRows(t, pool, "SELECT COUNT(*) FROM user_debt_adjustments"); n != 0 {
		t.Errorf("Expected no ledger entries, got %d", n)
	}
	if got := stockOf(t, pool, phoneID); got != 9 {
		t.Errorf("Completed orders still reserve stock: expected 9, got %d", got)
	}
}

func TestOrderService_CreateIsAtomic(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, _ := newServices(pool)
	ctx := context.Background()

	_, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID: intPtr(clientID),
		Lines: []core.OrderLineInput{
			{ProductID: phoneID, Quantity: 1},
			{ProductID: chargerID, Quantity: 1},
			{ProductID: 999, Quantity: 1},
		},
		CreatedBy: adminID,
	})
	if !core.IsNotFound(err, "Product") {
		t.Fatalf("Expected product not found, got %v", err)
	}

	if got := stockOf(t, pool, phoneID); got != 10 {
		t.Errorf("Stock of product 1 changed: %d", got)
	}
	if got := stockOf(t, pool, chargerID); got != 20 {
		t.Errorf("Stock of product 2 changed: %d", got)
	}
	if n := countRows(t, pool, "SELECT COUNT(*) FROM orders"); n != 0 {
		t.Errorf("Expected no orders, got %d", n)
	}
	if n := countRows(t, pool, "SELECT COUNT(*) FROM user_debt_adjustments"); n != 0 {
		t.Errorf("Expected no ledger entries, got %d", n)
	}
}

func TestOrderService_CreateStockGuards(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, _ := newServices(pool)
	ctx := context.Background()

	_, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID: intPtr(clientID),
		Lines:    []core.OrderLineInput{{ProductID: phoneID, Quantity: 11}},
	})
	var stockErr *core.StockError
	if !errors.As(err, &stockErr) || stockErr.Available != 10 || stockErr.Disabled {
		t.Errorf("Expected insufficient stock error, got %v", err)
	}

	// Two lines for the same product are checked against the combined quantity.
	_, err = orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID: intPtr(clientID),
		Lines: []core.OrderLineInput{
			{ProductID: phoneID, Quantity: 6},
			{ProductID: phoneID, Quantity: 6},
		},
	})
	if !errors.As(err, &stockErr) {
		t.Errorf("Expected stock error for duplicated lines, got %v", err)
	}

	_, err = orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID: intPtr(clientID),
		Lines:    []core.OrderLineInput{{ProductID: disabledID, Quantity: 1}},
	})
	if !errors.As(err, &stockErr) || !stockErr.Disabled {
		t.Errorf("Expected disabled product error, got %v", err)
	}

	_, err = orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID: intPtr(404),
		Lines:    []core.OrderLineInput{{ProductID: phoneID, Quantity: 1}},
	})
	if !core.IsNotFound(err, "User") {
		t.Errorf("Expected user not found, got %v", err)
	}

	if got := stockOf(t, pool, phoneID); got != 10 {
		t.Errorf("Failed creates must not touch stock, got %d", got)
	}
}

func TestOrderService_ReplaceItemsReconcilesLedger(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, ledger := newServices(pool)
	ctx := context.Background()

	order, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID:  intPtr(clientID),
		Lines:     []core.OrderLineInput{{ProductID: phoneID, Quantity: 2}},
		CreatedBy: adminID,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	res, err := orderSvc.UpdateOrder(ctx, order.ID, core.UpdateOrderInput{
		ReplaceItems: true,
		Items:        []core.ReplacementLine{{ProductID: chargerID, Quantity: 1, Price: dec("50")}},
		ActorID:      adminID,
	})
	if err != nil {
		t.Fatalf("UpdateOrder failed: %v", err)
	}
	if !res.ItemsUpdated {
		t.Error("Expected ItemsUpdated")
	}
	if !res.Order.TotalAmount.Equal(dec("50")) {
		t.Errorf("Expected total 50, got %s", res.Order.TotalAmount)
	}
	if len(res.Order.Items) != 1 || res.Order.Items[0].ProductID != chargerID {
		t.Errorf("Expected single charger item, got %+v", res.Order.Items)
	}

	if got := stockOf(t, pool, phoneID); got != 10 {
		t.Errorf("Expected phone stock restored to 10, got %d", got)
	}
	if got := stockOf(t, pool, chargerID); got != 19 {
		t.Errorf("Expected charger stock 19, got %d", got)
	}

	var removed, added *core.DebtAdjustment
	history, err := ledger.History(ctx, clientID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	for i := range history {
		switch history[i].Type {
		case core.AdjustmentItemsRemoved:
			removed = &history[i]
		case core.AdjustmentItemsAdded:
			added = &history[i]
		}
	}
	if removed == nil || removed.Currency != core.CurrencyEUR || !removed.Amount.Equal(dec("1000")) {
		t.Errorf("Expected +1000 EUR removal entry, got %+v", removed)
	}
	if added == nil || added.Currency != core.CurrencyMKD || !added.Amount.Equal(dec("-50")) {
		t.Errorf("Expected -50 MKD addition entry, got %+v", added)
	}

	summary, err := ledger.Summary(ctx, clientID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !summary.EURDebt.IsZero() || !summary.MKDDebt.Equal(dec("50")) {
		t.Errorf("Expected 0 EUR / 50 MKD, got %s / %s", summary.EURDebt, summary.MKDDebt)
	}
}

func TestOrderService_ReplaceItemsUsesRestoredStock(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, _ := newServices(pool)
	ctx := context.Background()

	order, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID: intPtr(clientID),
		Lines:    []core.OrderLineInput{{ProductID: phoneID, Quantity: 10}},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// All 10 units are back on the shelf before the new lines are checked.
	_, err = orderSvc.UpdateOrder(ctx, order.ID, core.UpdateOrderInput{
		ReplaceItems: true,
		Items:        []core.ReplacementLine{{ProductID: phoneID, Quantity: 10, Price: dec("450")}},
	})
	if err != nil {
		t.Fatalf("UpdateOrder failed: %v", err)
	}
	if got := stockOf(t, pool, phoneID); got != 0 {
		t.Errorf("Expected stock 0, got %d", got)
	}

	_, err = orderSvc.UpdateOrder(ctx, order.ID, core.UpdateOrderInput{
		ReplaceItems: true,
		Items:        []core.ReplacementLine{{ProductID: phoneID, Quantity: 11, Price: dec("450")}},
	})
	var stockErr *core.StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("Expected stock error, got %v", err)
	}
	if got := stockOf(t, pool, phoneID); got != 0 {
		t.Errorf("Failed edit must leave stock at 0, got %d", got)
	}
}

func TestOrderService_EditRollsBackOnStepFailure(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, _ := newServices(pool)
	ctx := context.Background()

	order, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID: intPtr(clientID),
		Lines:    []core.OrderLineInput{{ProductID: phoneID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	entriesBefore := countRows(t, pool, "SELECT COUNT(*) FROM user_debt_adjustments")

	injected := errors.New("injected failure")
	core.SetEditStepHook(orderSvc, func(step string) error {
		if step == core.StepInsertItems {
			return injected
		}
		return nil
	})

	_, err = orderSvc.UpdateOrder(ctx, order.ID, core.UpdateOrderInput{
		ReplaceItems: true,
		Items:        []core.ReplacementLine{{ProductID: chargerID, Quantity: 1, Price: dec("50")}},
	})
	if !errors.Is(err, injected) {
		t.Fatalf("Expected injected failure, got %v", err)
	}

	if got := stockOf(t, pool, phoneID); got != 8 {
		t.Errorf("Expected phone stock 8, got %d", got)
	}
	if got := stockOf(t, pool, chargerID); got != 20 {
		t.Errorf("Expected charger stock 20, got %d", got)
	}
	if n := countRows(t, pool, "SELECT COUNT(*) FROM user_debt_adjustments"); n != entriesBefore {
		t.Errorf("Expected %d ledger entries, got %d", entriesBefore, n)
	}
	reloaded, err := orderSvc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if len(reloaded.Items) != 1 || reloaded.Items[0].ProductID != phoneID || !reloaded.TotalAmount.Equal(dec("1000")) {
		t.Errorf("Order changed after rollback: %+v", reloaded)
	}
}

func TestOrderService_UpdateStatusOnly(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, _ := newServices(pool)
	ctx := context.Background()

	order, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID: intPtr(clientID),
		Lines:    []core.OrderLineInput{{ProductID: phoneID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	completed := core.StatusCompleted
	res, err := orderSvc.UpdateOrder(ctx, order.ID, core.UpdateOrderInput{Status: &completed})
	if err != nil {
		t.Fatalf("UpdateOrder failed: %v", err)
	}
	if res.ItemsUpdated || res.Order.Status != core.StatusCompleted {
		t.Errorf("Unexpected result: %+v", res)
	}
	if n := countRows(t, pool, "SELECT COUNT(*) FROM user_debt_adjustments"); n != 1 {
		t.Errorf("Status change must not write ledger entries, got %d", n)
	}

	_, err = orderSvc.UpdateOrder(ctx, 999, core.UpdateOrderInput{Status: &completed})
	if !core.IsNotFound(err, "Order") || err.Error() != "Order not found" {
		t.Errorf("Expected 'Order not found', got %v", err)
	}
}

func TestOrderService_DeletePendingOrderCompensatesLedger(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, ledger := newServices(pool)
	ctx := context.Background()

	order, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID: intPtr(clientID),
		Lines: []core.OrderLineInput{
			{ProductID: phoneID, Quantity: 1},
			{ProductID: chargerID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if err := orderSvc.DeleteOrder(ctx, order.ID, adminID); err != nil {
		t.Fatalf("DeleteOrder failed: %v", err)
	}

	if got := stockOf(t, pool, phoneID); got != 10 {
		t.Errorf("Expected phone stock 10, got %d", got)
	}
	if got := stockOf(t, pool, chargerID); got != 20 {
		t.Errorf("Expected charger stock 20, got %d", got)
	}
	summary, err := ledger.Summary(ctx, clientID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !summary.TotalDebt.IsZero() {
		t.Errorf("Expected zero debt after delete, got %s", summary.TotalDebt)
	}
	if _, err := orderSvc.GetOrder(ctx, order.ID); !core.IsNotFound(err, "Order") {
		t.Errorf("Expected deleted order to be gone, got %v", err)
	}
	if err := orderSvc.DeleteOrder(ctx, order.ID, adminID); !core.IsNotFound(err, "Order") {
		t.Errorf("Expected not found on second delete, got %v", err)
	}
}

func TestOrderService_ListOrdersFiltersByClient(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, _ := newServices(pool)
	ctx := context.Background()

	for _, id := range []int{clientID, clientID, 8} {
		if _, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
			ClientID: intPtr(id),
			Lines:    []core.OrderLineInput{{ProductID: chargerID, Quantity: 1}},
		}); err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}
	}

	all, total, err := orderSvc.ListOrders(ctx, core.OrderFilter{})
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("Expected 3 orders, got %d (total %d)", len(all), total)
	}

	own, total, err := orderSvc.ListOrders(ctx, core.OrderFilter{ClientID: intPtr(clientID)})
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if total != 2 || len(own) != 2 {
		t.Errorf("Expected 2 orders for client, got %d (total %d)", len(own), total)
	}
	for _, o := range own {
		if len(o.Items) != 1 {
			t.Errorf("Expected items loaded for order %d", o.ID)
		}
	}
}

func TestOrderService_ConcurrentCreatesNeverOversell(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, _ := newServices(pool)
	ctx := context.Background()

	// 15 concurrent single-unit orders against 10 phones in stock.
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
				ClientID: intPtr(clientID),
				Lines:    []core.OrderLineInput{{ProductID: phoneID, Quantity: 1}},
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Errorf("Expected exactly 10 successful orders, got %d", succeeded)
	}
	if got := stockOf(t, pool, phoneID); got != 0 {
		t.Errorf("Expected stock 0, got %d", got)
	}
	var sold int
	if err := pool.QueryRow(ctx, "SELECT COALESCE(SUM(quantity), 0) FROM order_items WHERE product_id = $1", phoneID).Scan(&sold); err != nil {
		t.Fatalf("failed to sum sold quantity: %v", err)
	}
	if sold+stockOf(t, pool, phoneID) != 10 {
		t.Errorf("Stock not conserved: sold %d", sold)
	}
}

// createMixedOrder places a pending client order for 2 phones and 4 chargers
// (total 1200: 1000 EUR + 200 MKD).
func createMixedOrder(t *testing.T, orderSvc core.OrderService) *core.Order {
	t.Helper()
	order, err := orderSvc.CreateOrder(context.Background(), core.CreateOrderInput{
		ClientID: intPtr(clientID),
		Lines: []core.OrderLineInput{
			{ProductID: phoneID, Quantity: 2},
			{ProductID: chargerID, Quantity: 4},
		},
		CreatedBy: adminID,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	return order
}

func TestOrderService_ReplaceItemsMissingThirdProductRollsBack(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, _ := newServices(pool)
	ctx := context.Background()

	order := createMixedOrder(t, orderSvc)
	entriesBefore := countRows(t, pool, "SELECT COUNT(*) FROM user_debt_adjustments")
	stockBefore := map[int]int{
		phoneID:    stockOf(t, pool, phoneID),
		chargerID:  stockOf(t, pool, chargerID),
		disabledID: stockOf(t, pool, disabledID),
	}

	_, err := orderSvc.UpdateOrder(ctx, order.ID, core.UpdateOrderInput{
		ReplaceItems: true,
		Items: []core.ReplacementLine{
			{ProductID: chargerID, Quantity: 1, Price: dec("50")},
			{ProductID: phoneID, Quantity: 1, Price: dec("500")},
			{ProductID: 9999, Quantity: 1, Price: dec("10")},
		},
		ActorID: adminID,
	})
	if !core.IsNotFound(err, "Product") {
		t.Fatalf("Expected product not found, got %v", err)
	}

	for id, want := range stockBefore {
		if got := stockOf(t, pool, id); got != want {
			t.Errorf("Product %d stock changed: want %d, got %d", id, want, got)
		}
	}
	if n := countRows(t, pool, "SELECT COUNT(*) FROM user_debt_adjustments"); n != entriesBefore {
		t.Errorf("Expected %d ledger entries, got %d", entriesBefore, n)
	}

	reloaded, err := orderSvc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if !reloaded.TotalAmount.Equal(dec("1200")) {
		t.Errorf("Expected total 1200, got %s", reloaded.TotalAmount)
	}
	if len(reloaded.Items) != 2 {
		t.Fatalf("Expected the original 2 items, got %+v", reloaded.Items)
	}
	for i, want := range order.Items {
		got := reloaded.Items[i]
		if got.ID != want.ID || got.ProductID != want.ProductID || got.Quantity != want.Quantity || !got.Price.Equal(want.Price) {
			t.Errorf("Item %d changed: want %+v, got %+v", i, want, got)
		}
	}
}

func TestOrderService_ReplaceItemsConservesStock(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, _ := newServices(pool)
	ctx := context.Background()

	order := createMixedOrder(t, orderSvc)
	before := map[int]int{
		phoneID:    stockOf(t, pool, phoneID),
		chargerID:  stockOf(t, pool, chargerID),
		disabledID: stockOf(t, pool, disabledID),
	}
	oldQty := map[int]int{phoneID: 2, chargerID: 4}

	// Charger stays with a new quantity, phone leaves, the disabled case joins.
	next := []core.ReplacementLine{
		{ProductID: chargerID, Quantity: 1, Price: dec("45")},
		{ProductID: disabledID, Quantity: 2, Price: dec("10")},
	}
	newQty := map[int]int{chargerID: 1, disabledID: 2}

	res, err := orderSvc.UpdateOrder(ctx, order.ID, core.UpdateOrderInput{ReplaceItems: true, Items: next, ActorID: adminID})
	if err != nil {
		t.Fatalf("UpdateOrder failed: %v", err)
	}

	for id, b := range before {
		want := b + oldQty[id] - newQty[id]
		if got := stockOf(t, pool, id); got != want {
			t.Errorf("Product %d: want stock %d, got %d", id, want, got)
		}
	}
	if !res.Order.TotalAmount.Equal(dec("65")) {
		t.Errorf("Expected total 65, got %s", res.Order.TotalAmount)
	}
	if !core.SumLineTotals(res.Order.Items).Equal(res.Order.TotalAmount) {
		t.Errorf("Items sum %s does not match total %s", core.SumLineTotals(res.Order.Items), res.Order.TotalAmount)
	}
}

func TestOrderService_OwnerEditRules(t *testing.T) {
	pool := setupTestDB(t)
	orderSvc, ledger := newServices(pool)
	ctx := context.Background()

	order := createMixedOrder(t, orderSvc)
	entriesBefore := countRows(t, pool, "SELECT COUNT(*) FROM user_debt_adjustments")

	// Same products at price 0 would credit the whole order back to the client.
	_, err := orderSvc.UpdateOrder(ctx, order.ID, core.UpdateOrderInput{
		ReplaceItems: true,
		Items: []core.ReplacementLine{
			{ProductID: phoneID, Quantity: 2, Price: dec("0")},
			{ProductID: chargerID, Quantity: 4, Price: dec("0")},
		},
		ActorID: clientID,
		OwnerID: clientID,
	})
	var authErr *core.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected authorization error for repricing, got %v", err)
	}
	if n := countRows(t, pool, "SELECT COUNT(*) FROM user_debt_adjustments"); n != entriesBefore {
		t.Errorf("Repricing attempt wrote ledger entries: %d -> %d", entriesBefore, n)
	}
	if got := stockOf(t, pool, phoneID); got != 8 {
		t.Errorf("Expected phone stock 8, got %d", got)
	}

	// Catalog prices are accepted and debt follows the new item set.
	_, err = orderSvc.UpdateOrder(ctx, order.ID, core.UpdateOrderInput{
		ReplaceItems: true,
		Items:        []core.ReplacementLine{{ProductID: phoneID, Quantity: 1, Price: dec("500.00")}},
		ActorID:      clientID,
		OwnerID:      clientID,
	})
	if err != nil {
		t.Fatalf("Owner edit at catalog price failed: %v", err)
	}
	summary, err := ledger.Summary(ctx, clientID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !summary.EURDebt.Equal(dec("500")) || !summary.MKDDebt.IsZero() {
		t.Errorf("Expected 500 EUR / 0 MKD, got %s / %s", summary.EURDebt, summary.MKDDebt)
	}

	// Another client cannot touch the order.
	pending := core.StatusPending
	_, err = orderSvc.UpdateOrder(ctx, order.ID, core.UpdateOrderInput{Status: &pending, ActorID: 8, OwnerID: 8})
	if !errors.As(err, &authErr) {
		t.Errorf("Expected authorization error for a foreign order, got %v", err)
	}

	// Once an admin completes the order, the owner can no longer edit it.
	completed := core.StatusCompleted
	if _, err := orderSvc.UpdateOrder(ctx, order.ID, core.UpdateOrderInput{Status: &completed, ActorID: adminID}); err != nil {
		t.Fatalf("Admin status change failed: %v", err)
	}
	_, err = orderSvc.UpdateOrder(ctx, order.ID, core.UpdateOrderInput{
		ReplaceItems: true,
		Items:        []core.ReplacementLine{{ProductID: phoneID, Quantity: 1, Price: dec("500")}},
		ActorID:      clientID,
		OwnerID:      clientID,
	})
	if !errors.As(err, &authErr) {
		t.Errorf("Expected authorization error for a completed order, got %v", err)
	}
}

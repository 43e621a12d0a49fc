package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"mjolnir/models"
)

type fakeProducts struct {
	mu    sync.Mutex
	stock map[string]int
}

func newFakeProducts(stock map[string]int) *fakeProducts {
	return &fakeProducts{stock: stock}
}

func (f *fakeProducts) Reserve(_ context.Context, productID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stock[productID] < qty {
		return ErrInsufficientStock
	}
	f.stock[productID] -= qty
	return nil
}

func (f *fakeProducts) Release(_ context.Context, productID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stock[productID] += qty
	return nil
}

func (f *fakeProducts) level(productID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[productID]
}

type fakeOrders struct {
	mu       sync.Mutex
	inserted []models.Order
	fail     error
}

func (f *fakeOrders) Insert(_ context.Context, order models.Order) error {
	if f.fail != nil {
		return f.fail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, order)
	return nil
}

func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type fakeCarts struct {
	mu      sync.Mutex
	cleared []string
	fail    error
}

func (f *fakeCarts) Clear(_ context.Context, userID string) error {
	if f.fail != nil {
		return f.fail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, userID)
	return nil
}

type fakeOutbox struct {
	mu       sync.Mutex
	enqueued []string
	fail     error
}

func (f *fakeOutbox) Enqueue(_ context.Context, orderID string) error {
	if f.fail != nil {
		return f.fail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, orderID)
	return nil
}

func testAddress() models.DeliveryAddress {
	return models.DeliveryAddress{
		FirstName:  "Jane",
		LastName:   "Doe",
		Address:    "1 Bifrost Way",
		City:       "Asgard",
		PostalCode: "0001",
		Province:   "Realm Eternal",
		Country:    "NO",
		Phone:      "555-0100",
	}
}

func testSaga(products *fakeProducts) (*Saga, *fakeOrders, *fakeCarts, *fakeOutbox) {
	orderStore := &fakeOrders{}
	cartStore := &fakeCarts{}
	outbox := &fakeOutbox{}
	return &Saga{Products: products, Orders: orderStore, Carts: cartStore, Outbox: outbox},
		orderStore, cartStore, outbox
}

func guitarLine(id string, price float64, qty int) models.ResolvedCartLine {
	return models.ResolvedCartLine{
		Product:  models.Product{ProductID: id, Name: "Guitar " + id, Price: price, PriceSet: true},
		Quantity: qty,
	}
}

func TestPlaceHappyPath(t *testing.T) {
	products := newFakeProducts(map[string]int{"g1": 5, "g2": 3})
	saga, orderStore, cartStore, outbox := testSaga(products)

	result, err := saga.Place(context.Background(), PlacementInput{
		UserID:  "u1",
		Lines:   []models.ResolvedCartLine{guitarLine("g1", 100, 2), guitarLine("g2", 50, 1)},
		Address: testAddress(),
	})
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	if got := products.level("g1"); got != 3 {
		t.Errorf("g1 stock = %d, want 3", got)
	}
	if got := products.level("g2"); got != 2 {
		t.Errorf("g2 stock = %d, want 2", got)
	}
	if result.Order.TotalPrice != 250 {
		t.Errorf("total = %v, want 250", result.Order.TotalPrice)
	}
	if result.Order.Status != models.StatusProcessing {
		t.Errorf("status = %q, want %q", result.Order.Status, models.StatusProcessing)
	}
	if result.Order.OrderID == "" {
		t.Error("order id is empty")
	}
	if !result.CartCleared || !result.Dispatched {
		t.Errorf("CartCleared=%v Dispatched=%v, want both true", result.CartCleared, result.Dispatched)
	}
	if orderStore.count() != 1 {
		t.Fatalf("inserted %d orders, want 1", orderStore.count())
	}
	if len(cartStore.cleared) != 1 || cartStore.cleared[0] != "u1" {
		t.Errorf("cleared carts = %v, want [u1]", cartStore.cleared)
	}
	if len(outbox.enqueued) != 1 || outbox.enqueued[0] != result.Order.OrderID {
		t.Errorf("enqueued = %v, want the placed order", outbox.enqueued)
	}
}

func TestPlaceEmptyCart(t *testing.T) {
	saga, orderStore, _, _ := testSaga(newFakeProducts(map[string]int{}))

	_, err := saga.Place(context.Background(), PlacementInput{UserID: "u1", Address: testAddress()})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
	if orderStore.count() != 0 {
		t.Error("order inserted despite empty cart")
	}
}

func TestPlaceIncompleteAddress(t *testing.T) {
	products := newFakeProducts(map[string]int{"g1": 5})
	saga, orderStore, _, _ := testSaga(products)

	addr := testAddress()
	addr.Phone = "   "
	_, err := saga.Place(context.Background(), PlacementInput{
		UserID:  "u1",
		Lines:   []models.ResolvedCartLine{guitarLine("g1", 100, 1)},
		Address: addr,
	})
	if !errors.Is(err, ErrIncompleteAddress) {
		t.Fatalf("err = %v, want ErrIncompleteAddress", err)
	}
	if got := products.level("g1"); got != 5 {
		t.Errorf("stock touched on validation failure: %d", got)
	}
	if orderStore.count() != 0 {
		t.Error("order inserted despite invalid address")
	}
}

func TestPlaceInsufficientStockReleasesPrefix(t *testing.T) {
	products := newFakeProducts(map[string]int{"g1": 5, "g2": 0})
	saga, orderStore, cartStore, outbox := testSaga(products)

	_, err := saga.Place(context.Background(), PlacementInput{
		UserID:  "u1",
		Lines:   []models.ResolvedCartLine{guitarLine("g1", 100, 2), guitarLine("g2", 50, 1)},
		Address: testAddress(),
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("err = %T, want *InsufficientStockError", err)
	}
	if stockErr.ProductID != "g2" {
		t.Errorf("failing product = %q, want g2", stockErr.ProductID)
	}

	if got := products.level("g1"); got != 5 {
		t.Errorf("g1 stock = %d, want the reservation rolled back to 5", got)
	}
	if orderStore.count() != 0 {
		t.Error("order inserted despite stock failure")
	}
	if len(cartStore.cleared) != 0 {
		t.Error("cart cleared despite stock failure")
	}
	if len(outbox.enqueued) != 0 {
		t.Error("dispatch enqueued despite stock failure")
	}
}

func TestPlaceInsertFailureReleasesAll(t *testing.T) {
	products := newFakeProducts(map[string]int{"g1": 5, "g2": 3})
	saga, orderStore, cartStore, _ := testSaga(products)
	orderStore.fail = errors.New("write concern timeout")

	_, err := saga.Place(context.Background(), PlacementInput{
		UserID:  "u1",
		Lines:   []models.ResolvedCartLine{guitarLine("g1", 100, 2), guitarLine("g2", 50, 3)},
		Address: testAddress(),
	})
	if err == nil {
		t.Fatal("Place succeeded despite insert failure")
	}
	if got := products.level("g1"); got != 5 {
		t.Errorf("g1 stock = %d, want 5 after rollback", got)
	}
	if got := products.level("g2"); got != 3 {
		t.Errorf("g2 stock = %d, want 3 after rollback", got)
	}
	if len(cartStore.cleared) != 0 {
		t.Error("cart cleared despite insert failure")
	}
}

func TestPlaceTailFailuresAreNonFatal(t *testing.T) {
	products := newFakeProducts(map[string]int{"g1": 5})
	saga, orderStore, cartStore, outbox := testSaga(products)
	cartStore.fail = errors.New("cart store down")
	outbox.fail = errors.New("outbox down")

	result, err := saga.Place(context.Background(), PlacementInput{
		UserID:  "u1",
		Lines:   []models.ResolvedCartLine{guitarLine("g1", 100, 1)},
		Address: testAddress(),
	})
	if err != nil {
		t.Fatalf("Place returned error for non-fatal tail failures: %v", err)
	}
	if result.CartCleared {
		t.Error("CartCleared = true, want false")
	}
	if result.Dispatched {
		t.Error("Dispatched = true, want false")
	}
	if orderStore.count() != 1 {
		t.Errorf("inserted %d orders, want 1", orderStore.count())
	}
	if got := products.level("g1"); got != 4 {
		t.Errorf("g1 stock = %d, want 4 (order stands)", got)
	}
}

// Two buyers race for the last unit: exactly one order may exist afterwards.
func TestPlaceLastUnitSingleWinner(t *testing.T) {
	products := newFakeProducts(map[string]int{"g1": 1})
	saga, orderStore, _, _ := testSaga(products)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, user := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := saga.Place(context.Background(), PlacementInput{
				UserID:  uid,
				Lines:   []models.ResolvedCartLine{guitarLine("g1", 100, 1)},
				Address: testAddress(),
			})
			results <- err
		}(user)
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrInsufficientStock):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("wins=%d losses=%d, want exactly one of each", wins, losses)
	}
	if orderStore.count() != 1 {
		t.Errorf("inserted %d orders, want 1", orderStore.count())
	}
	if got := products.level("g1"); got != 0 {
		t.Errorf("g1 stock = %d, want 0", got)
	}
}

func TestValidateAddress(t *testing.T) {
	if err := ValidateAddress(testAddress()); err != nil {
		t.Errorf("complete address rejected: %v", err)
	}

	blank := func(mutate func(*models.DeliveryAddress)) models.DeliveryAddress {
		a := testAddress()
		mutate(&a)
		return a
	}
	cases := map[string]models.DeliveryAddress{
		"first name": blank(func(a *models.DeliveryAddress) { a.FirstName = "" }),
		"last name":  blank(func(a *models.DeliveryAddress) { a.LastName = " " }),
		"street":     blank(func(a *models.DeliveryAddress) { a.Address = "" }),
		"city":       blank(func(a *models.DeliveryAddress) { a.City = "\t" }),
		"postal":     blank(func(a *models.DeliveryAddress) { a.PostalCode = "" }),
		"province":   blank(func(a *models.DeliveryAddress) { a.Province = "" }),
		"country":    blank(func(a *models.DeliveryAddress) { a.Country = "" }),
		"phone":      blank(func(a *models.DeliveryAddress) { a.Phone = "" }),
	}
	for name, addr := range cases {
		if err := ValidateAddress(addr); !errors.Is(err, ErrIncompleteAddress) {
			t.Errorf("%s missing: err = %v, want ErrIncompleteAddress", name, err)
		}
	}
}

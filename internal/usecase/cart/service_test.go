package cart

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	domcart "example.com/storefront/internal/domain/cart"
	"example.com/storefront/internal/domain/money"
	domorder "example.com/storefront/internal/domain/order"
	domproduct "example.com/storefront/internal/domain/product"
	domuser "example.com/storefront/internal/domain/user"
)

type mockCatalog struct {
	products map[int64]*domproduct.Product
	getErr   error
}

func newMockCatalog(products ...*domproduct.Product) *mockCatalog {
	c := &mockCatalog{products: make(map[int64]*domproduct.Product)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (m *mockCatalog) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if p, ok := m.products[id]; ok {
		cloned := *p
		return &cloned, nil
	}
	return nil, domproduct.ErrProductNotFound
}

type mockStore struct {
	mu      sync.Mutex
	data    map[string]string
	setErr  error
	getErr  error
	setCall int
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCall++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type mockSubmitter struct {
	calls   int
	drafts  []domorder.Draft
	err     error
	release chan struct{}
	entered chan struct{}
}

func (m *mockSubmitter) Submit(ctx context.Context, draft domorder.Draft) (*domorder.Confirmation, error) {
	m.calls++
	m.drafts = append(m.drafts, draft)
	if m.entered != nil {
		close(m.entered)
	}
	if m.release != nil {
		<-m.release
	}
	if m.err != nil {
		return nil, m.err
	}
	return &domorder.Confirmation{ID: "ORD-1", Total: draft.Total, Status: domorder.StatusConfirmed}, nil
}

func laptop() *domproduct.Product {
	return &domproduct.Product{ID: 1, Name: "Premium Laptop", Category: "electronics", Price: money.MustParse("1299.99"), Stock: 10}
}

func tshirt() *domproduct.Product {
	return &domproduct.Product{ID: 2, Name: "Coding T-Shirt", Category: "clothing", Price: money.MustParse("29.99"), Stock: 50}
}

func setupService() (*Service, *mockCatalog, *mockStore, *mockSubmitter) {
	catalog := newMockCatalog(laptop(), tshirt())
	store := newMockStore()
	submitter := &mockSubmitter{}
	return NewService(catalog, store, submitter, nil), catalog, store, submitter
}

func validCheckout() CheckoutInput {
	return CheckoutInput{
		Shipping: domorder.ShippingInfo{
			Name:    "Test User",
			Email:   "test@example.com",
			Address: "1 Main St",
		},
		PaymentMethod: domorder.PaymentCard,
	}
}

func testIdentity() *domuser.Identity {
	return &domuser.Identity{ID: 1, Name: "Test User", Email: "test@example.com", Token: "tok"}
}

func TestAddItem_NewLine(t *testing.T) {
	svc, _, store, _ := setupService()
	ctx := context.Background()

	snap, err := svc.AddItem(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	require.Equal(t, int64(1), snap.Lines[0].Quantity)
	require.Equal(t, "Premium Laptop", snap.Lines[0].ProductName)
	require.Equal(t, "1299.99", snap.Total.String())
	require.Contains(t, store.data, StorageKey)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc, _, store, _ := setupService()

	_, err := svc.AddItem(context.Background(), 99, 1)
	require.ErrorIs(t, err, domproduct.ErrProductNotFound)
	require.Equal(t, 0, store.setCall)
}

func TestAddItem_RejectsNonPositiveDelta(t *testing.T) {
	svc, _, _, _ := setupService()

	_, err := svc.AddItem(context.Background(), 1, 0)
	require.ErrorIs(t, err, domcart.ErrInvalidQuantity)
}

func TestAddItem_AtStockCeilingLeavesCartUnchanged(t *testing.T) {
	svc, _, _, _ := setupService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 1, 10)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, 1, 1)
	require.ErrorIs(t, err, domcart.ErrStockExceeded)

	var stockErr *domcart.StockExceededError
	require.True(t, errors.As(err, &stockErr))
	require.Equal(t, int64(1), stockErr.ProductID)
	require.Equal(t, int64(11), stockErr.Requested)
	require.Equal(t, int64(10), stockErr.Stock)

	require.Equal(t, int64(10), svc.Cart().Quantity(1))
}

func TestAddItem_HugeDeltaDoesNotWrap(t *testing.T) {
	svc, _, store, _ := setupService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 1, 2)
	require.NoError(t, err)
	before := store.data[StorageKey]

	_, err = svc.AddItem(ctx, 1, math.MaxInt64)
	require.ErrorIs(t, err, domcart.ErrStockExceeded)

	var stockErr *domcart.StockExceededError
	require.True(t, errors.As(err, &stockErr))
	require.Equal(t, int64(math.MaxInt64), stockErr.Requested)

	require.Equal(t, int64(2), svc.Cart().Quantity(1))
	require.Equal(t, before, store.data[StorageKey])
}

func TestAddItem_HugeDeltaOnNewLine(t *testing.T) {
	svc, _, _, _ := setupService()

	_, err := svc.AddItem(context.Background(), 2, math.MaxInt64)
	require.ErrorIs(t, err, domcart.ErrStockExceeded)
	require.True(t, svc.Cart().IsEmpty())
}

func TestAddItem_CatalogFailureIsWrapped(t *testing.T) {
	svc, catalog, _, _ := setupService()
	catalog.getErr = errors.New("db down")

	_, err := svc.AddItem(context.Background(), 1, 1)
	require.Error(t, err)
	require.NotErrorIs(t, err, domproduct.ErrProductNotFound)
	require.Contains(t, err.Error(), "db down")
}

func TestAddItem_PersistFailureKeepsMemoryState(t *testing.T) {
	svc, _, store, _ := setupService()
	store.setErr = errors.New("quota exceeded")

	snap, err := svc.AddItem(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(2), snap.ItemCount)
}

func TestSetItemQuantity(t *testing.T) {
	svc, _, _, _ := setupService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 2, 3)
	require.NoError(t, err)

	snap, err := svc.SetItemQuantity(ctx, 2, 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), snap.Lines[0].Quantity)

	_, err = svc.SetItemQuantity(ctx, 2, 51)
	require.ErrorIs(t, err, domcart.ErrStockExceeded)
	require.Equal(t, int64(7), svc.Cart().Quantity(2))

	_, err = svc.SetItemQuantity(ctx, 42, 1)
	require.ErrorIs(t, err, domproduct.ErrProductNotFound)
}

func TestSetItemQuantity_ZeroOrNegativeRemoves(t *testing.T) {
	for _, q := range []int64{0, -3} {
		svc, _, _, _ := setupService()
		ctx := context.Background()

		_, err := svc.AddItem(ctx, 1, 2)
		require.NoError(t, err)

		snap, err := svc.SetItemQuantity(ctx, 1, q)
		require.NoError(t, err)
		require.Empty(t, snap.Lines)
		require.True(t, svc.Cart().IsEmpty())
	}
}

func TestSetItemQuantity_CreatesLineWhenAbsent(t *testing.T) {
	svc, _, _, _ := setupService()

	snap, err := svc.SetItemQuantity(context.Background(), 2, 4)
	require.NoError(t, err)
	require.Equal(t, int64(4), snap.ItemCount)
}

func TestRemoveItem_AbsentIsNoop(t *testing.T) {
	svc, _, store, _ := setupService()

	snap, err := svc.RemoveItem(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, snap.Lines)
	require.Equal(t, 0, store.setCall)
}

func TestTotal_EmptyCart(t *testing.T) {
	svc, _, _, _ := setupService()

	total, err := svc.Total(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0.00", total.String())
}

func TestTotal_UsesLivePrices(t *testing.T) {
	svc, catalog, _, _ := setupService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 2, 3)
	require.NoError(t, err)

	catalog.products[2].Price = money.MustParse("10.00")

	total, err := svc.Total(ctx)
	require.NoError(t, err)
	require.Equal(t, "30.00", total.String())
}

func TestTotal_NoFloatDrift(t *testing.T) {
	catalog := newMockCatalog(&domproduct.Product{ID: 7, Name: "Sticker", Price: money.FromFloat(0.1), Stock: 1000})
	svc := NewService(catalog, newMockStore(), &mockSubmitter{}, nil)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		_, err := svc.AddItem(ctx, 7, 1)
		require.NoError(t, err)
	}

	total, err := svc.Total(ctx)
	require.NoError(t, err)
	require.Equal(t, "3.00", total.String())
}

func TestScenario_AddSetRemove(t *testing.T) {
	svc, _, _, _ := setupService()
	ctx := context.Background()

	snap, err := svc.AddItem(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, "1299.99", snap.Total.String())

	snap, err = svc.AddItem(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), svc.Cart().Quantity(1))
	require.Equal(t, "2599.98", snap.Total.String())

	_, err = svc.SetItemQuantity(ctx, 1, 11)
	require.ErrorIs(t, err, domcart.ErrStockExceeded)
	require.Equal(t, int64(2), svc.Cart().Quantity(1))

	snap, err = svc.RemoveItem(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, snap.Lines)
	require.Equal(t, "0.00", snap.Total.String())
}

func TestItemCount(t *testing.T) {
	svc, _, _, _ := setupService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 2, 5)
	require.NoError(t, err)

	require.Equal(t, int64(7), svc.ItemCount())
}

func TestClear(t *testing.T) {
	svc, _, store, _ := setupService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 1, 1)
	require.NoError(t, err)

	svc.Clear(ctx)
	require.True(t, svc.Cart().IsEmpty())
	require.JSONEq(t, `{"lines":[]}`, store.data[StorageKey])
}

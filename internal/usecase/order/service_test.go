package order

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/storefront/internal/domain/money"
	domorder "example.com/storefront/internal/domain/order"
)

type mockOrderRepository struct {
	orders    map[string]*domorder.Order
	createErr error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[string]*domorder.Order)}
}

func (m *mockOrderRepository) Create(ctx context.Context, o *domorder.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.orders[o.ID] = o
	return nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domorder.Order, error) {
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, domorder.ErrOrderNotFound
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID int64) ([]*domorder.Order, error) {
	var out []*domorder.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type mockNotifier struct {
	placed []*domorder.Order
	err    error
}

func (m *mockNotifier) OrderPlaced(ctx context.Context, o *domorder.Order) error {
	m.placed = append(m.placed, o)
	return m.err
}

func validDraft() domorder.Draft {
	return domorder.Draft{
		UserID: 7,
		Items: []domorder.Item{
			{ProductID: 1, Name: "Laptop", UnitPrice: money.MustParse("1299.99"), Quantity: 1, Subtotal: money.MustParse("1299.99")},
		},
		Shipping:      domorder.ShippingInfo{Name: "Ada", Email: "ada@example.com", Address: "1 Main St"},
		PaymentMethod: domorder.PaymentCard,
		Total:         money.MustParse("1299.99"),
	}
}

func TestSubmit_Success(t *testing.T) {
	repo := newMockOrderRepository()
	notifier := &mockNotifier{}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, nil,
		WithNotifier(notifier),
		WithClock(func() time.Time { return at }),
	)

	c, err := svc.Submit(context.Background(), validDraft())

	require.NoError(t, err)
	require.True(t, strings.HasPrefix(c.ID, "ORD-"))
	require.Equal(t, domorder.StatusConfirmed, c.Status)
	require.Equal(t, money.MustParse("1299.99"), c.Total)

	stored, err := svc.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(7), stored.UserID)
	require.Equal(t, at, stored.CreatedAt)
	require.Len(t, notifier.placed, 1)
	require.Equal(t, c.ID, notifier.placed[0].ID)
}

func TestSubmit_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *domorder.Draft)
		wantErr error
	}{
		{name: "No items", mutate: func(d *domorder.Draft) { d.Items = nil }, wantErr: domorder.ErrOrderSubmissionFailed},
		{name: "Bad payment", mutate: func(d *domorder.Draft) { d.PaymentMethod = "BITCOIN" }, wantErr: domorder.ErrInvalidPayment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockOrderRepository()
			svc := NewService(repo, nil)
			d := validDraft()
			tt.mutate(&d)

			c, err := svc.Submit(context.Background(), d)

			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, c)
			require.Empty(t, repo.orders)
		})
	}
}

func TestSubmit_RepositoryError(t *testing.T) {
	repo := newMockOrderRepository()
	repo.createErr = errors.New("disk full")
	notifier := &mockNotifier{}
	svc := NewService(repo, nil, WithNotifier(notifier))

	_, err := svc.Submit(context.Background(), validDraft())

	require.ErrorIs(t, err, domorder.ErrOrderSubmissionFailed)
	require.Empty(t, notifier.placed)
}

func TestSubmit_NotificationFailureDoesNotFailOrder(t *testing.T) {
	notifier := &mockNotifier{err: errors.New("smtp down")}
	svc := NewService(newMockOrderRepository(), nil, WithNotifier(notifier))

	c, err := svc.Submit(context.Background(), validDraft())

	require.NoError(t, err)
	require.NotNil(t, c)
	require.Len(t, notifier.placed, 1)
}

func TestSubmit_ProcessingDelayHonoursContext(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewService(repo, nil, WithProcessingDelay(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Submit(ctx, validDraft())

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Empty(t, repo.orders)
}

func TestSubmit_ProcessingDelayElapses(t *testing.T) {
	svc := NewService(newMockOrderRepository(), nil,
		WithProcessingDelay(5*time.Millisecond),
		WithIDGenerator(func() string { return "ORD-fixed" }),
	)

	c, err := svc.Submit(context.Background(), validDraft())

	require.NoError(t, err)
	require.Equal(t, "ORD-fixed", c.ID)
}

func TestListByUser(t *testing.T) {
	svc := NewService(newMockOrderRepository(), nil)

	_, err := svc.Submit(context.Background(), validDraft())
	require.NoError(t, err)
	other := validDraft()
	other.UserID = 8
	_, err = svc.Submit(context.Background(), other)
	require.NoError(t, err)

	orders, err := svc.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	_, err = svc.GetByID(context.Background(), "ORD-missing")
	require.ErrorIs(t, err, domorder.ErrOrderNotFound)
}

package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	"github.com/sajikita/foodcourt-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  tenant_id TEXT NOT NULL,
  checkout_counter_id TEXT,
  order_type TEXT NOT NULL,
  status TEXT NOT NULL,
  payment_status TEXT NOT NULL,
  total_amount INTEGER NOT NULL,
  customer_name TEXT,
  table_number TEXT,
  notes TEXT,
  paid_at DATETIME,
  ready_at DATETIME,
  completed_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  menu_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price INTEGER NOT NULL,
  subtotal INTEGER NOT NULL,
  notes TEXT,
  created_at DATETIME
);`
	payments := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  method TEXT NOT NULL,
  status TEXT NOT NULL,
  amount INTEGER NOT NULL,
  amount_paid INTEGER NOT NULL,
  change_amount INTEGER NOT NULL,
  transaction_ref TEXT NOT NULL UNIQUE,
  processed_by TEXT,
  processed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(payments).Error)
	return db
}

func newOrder(t *testing.T, db *gorm.DB, tenantID uuid.UUID, number string, status enums.OrderStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   number,
		TenantID:      tenantID,
		OrderType:     enums.OrderTypeTakeaway,
		Status:        status,
		PaymentStatus: enums.OrderPaymentStatusUnpaid,
		TotalAmount:   30000,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepoCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-20250901-000010",
		TenantID:      tenantID,
		OrderType:     enums.OrderTypeDineIn,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.OrderPaymentStatusUnpaid,
		TotalAmount:   45000,
	}
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	items := []models.OrderItem{
		{ID: uuid.New(), OrderID: order.ID, MenuName: "Soto Ayam", Quantity: 1, UnitPrice: 20000, Subtotal: 20000},
		{ID: uuid.New(), OrderID: order.ID, MenuName: "Nasi Putih", Quantity: 1, UnitPrice: 25000, Subtotal: 25000},
	}
	require.NoError(t, repo.CreateItems(ctx, items))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20250901-000010", found.OrderNumber)
	assert.Len(t, found.Items, 2)

	byNumber, err := repo.FindByOrderNumber(ctx, "ORD-20250901-000010")
	require.NoError(t, err)
	assert.Equal(t, order.ID, byNumber.ID)
}

func TestRepoListFiltersByTenantAndStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantA := uuid.New()
	tenantB := uuid.New()
	newOrder(t, db, tenantA, "ORD-20250901-000020", enums.OrderStatusPending)
	newOrder(t, db, tenantA, "ORD-20250901-000021", enums.OrderStatusPaid)
	newOrder(t, db, tenantB, "ORD-20250901-000022", enums.OrderStatusPending)

	pending := enums.OrderStatusPending
	rows, total, err := repo.List(ctx, pagination.Params{Limit: 10}, Filters{
		TenantID: &tenantA,
		Status:   &pending,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "ORD-20250901-000020", rows[0].OrderNumber)
}

func TestRepoListPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	for i := 0; i < 5; i++ {
		newOrder(t, db, tenantID, uuid.NewString(), enums.OrderStatusPending)
	}

	rows, total, err := repo.List(ctx, pagination.Params{Limit: 2, Offset: 2}, Filters{TenantID: &tenantID})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, rows, 2)
}

func TestRepoUpdateStatusFromGuardsPriorState(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	order := newOrder(t, db, uuid.New(), "ORD-20250901-000030", enums.OrderStatusPaid)

	applied, err := repo.UpdateStatusFrom(ctx, order.ID, enums.OrderStatusPaid, map[string]any{
		"status": enums.OrderStatusPreparing,
	})
	require.NoError(t, err)
	assert.True(t, applied)

	// Second writer expecting the old state loses.
	applied, err = repo.UpdateStatusFrom(ctx, order.ID, enums.OrderStatusPaid, map[string]any{
		"status": enums.OrderStatusPreparing,
	})
	require.NoError(t, err)
	assert.False(t, applied)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPreparing, found.Status)
}

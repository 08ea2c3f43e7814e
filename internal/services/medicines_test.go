package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/testutil"
)

func TestMedicineInventory(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewMedicineService(db)
	ctx := context.Background()

	zinc := &models.Medicine{Name: "Zincat", UnitPrice: decimal.NewFromInt(90), QuantityInStock: 40, ReorderLevel: 10}
	require.NoError(t, svc.Create(ctx, zinc))
	assert.True(t, zinc.IsActive)

	testutil.CreateMedicine(t, db, "Amoxil", 100, 3, 5)
	brufen := testutil.CreateMedicine(t, db, "Brufen", 80, 5, 5)
	retired := testutil.CreateMedicine(t, db, "Aspirin", 20, 0, 10)
	require.NoError(t, svc.Deactivate(ctx, retired.ID))

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(active))
	for _, m := range active {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Amoxil", "Brufen", "Zincat"}, names)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Amoxil", low[0].Name)

	stock := 50
	price := decimal.NewFromInt(85)
	updated, err := svc.Update(ctx, brufen.ID, MedicineUpdate{QuantityInStock: &stock, UnitPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.QuantityInStock)
	assert.True(t, updated.UnitPrice.Equal(price))
	assert.False(t, updated.NeedsReorder())

	negative := decimal.NewFromInt(-1)
	_, err = svc.Update(ctx, brufen.ID, MedicineUpdate{UnitPrice: &negative})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.ErrorIs(t, svc.Deactivate(ctx, "missing"), ErrNotFound)
}

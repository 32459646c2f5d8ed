package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vanstock-api/internal/application/catalog"
	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/testsupport"
)

func TestApply_SumaDeltasDeLaMismaClave(t *testing.T) {
	env := testsupport.NewEnv(t)
	p := env.Product(t, "P", "1")
	v := env.Van(t, "V")
	env.Stock(t, p.ID, v.ID, 5)

	err := env.Store.Run(context.Background(), func(ctx context.Context, repos ports.TxRepos) error {
		rows, err := catalog.Apply(ctx, repos.Stock, []entity.StockDelta{
			{ProductID: p.ID, LocationID: v.ID, Delta: -4},
			{ProductID: p.ID, LocationID: v.ID, Delta: 3},
		}, time.Now())
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(4), rows[0].Quantity)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), env.Quantity(t, p.ID, v.ID))
}

func TestApply_NadaSeEscribeSiUnaFilaQuedaNegativa(t *testing.T) {
	env := testsupport.NewEnv(t)
	p := env.Product(t, "P", "1")
	a := env.Warehouse(t, "A")
	b := env.Van(t, "B")
	env.Stock(t, p.ID, a.ID, 5)

	err := env.Store.Run(context.Background(), func(ctx context.Context, repos ports.TxRepos) error {
		_, err := catalog.Apply(ctx, repos.Stock, []entity.StockDelta{
			{ProductID: p.ID, LocationID: b.ID, Delta: 6},
			{ProductID: p.ID, LocationID: a.ID, Delta: -6},
		}, time.Now())
		return err
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(5), env.Quantity(t, p.ID, a.ID))
	assert.Zero(t, env.Quantity(t, p.ID, b.ID))
}

func TestCheckAvailable(t *testing.T) {
	env := testsupport.NewEnv(t)
	p := env.Product(t, "P", "1")
	v := env.Van(t, "V")
	env.Stock(t, p.ID, v.ID, 5)
	key := entity.StockKey{ProductID: p.ID, LocationID: v.ID}

	assert.NoError(t, catalog.CheckAvailable(context.Background(), env.Store.Stock(), map[entity.StockKey]int64{key: 5}))
	assert.ErrorIs(t, catalog.CheckAvailable(context.Background(), env.Store.Stock(), map[entity.StockKey]int64{key: 6}), domain.ErrInsufficientStock)
}

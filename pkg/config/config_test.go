package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StoreDriverPostgres, cfg.App.StoreDriver)
	assert.True(t, cfg.Pricing.DiscountRate.IsZero())
	assert.True(t, cfg.Pricing.TaxRate.IsZero())
	assert.Equal(t, "half_up", cfg.Pricing.Rounding)
	assert.Equal(t, 2*time.Second, cfg.Ledger.LockTimeout)
	assert.Equal(t, 3, cfg.Ledger.RetryAttempts)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_PoliticaDePrecios(t *testing.T) {
	v := viper.New()
	v.Set("PRICING_DISCOUNT_RATE", "0.10")
	v.Set("PRICING_TAX_RATE", "0.05")
	v.Set("STORE_DRIVER", "memory")
	v.Set("LEDGER_LOCK_TIMEOUT_MS", "500")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.True(t, cfg.Pricing.DiscountRate.Equal(decimal.RequireFromString("0.10")))
	assert.True(t, cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.05")))
	assert.Equal(t, StoreDriverMemory, cfg.App.StoreDriver)
	assert.Equal(t, 500*time.Millisecond, cfg.Ledger.LockTimeout)
}

func TestFromViper_RechazaValoresInvalidos(t *testing.T) {
	v := viper.New()
	v.Set("PRICING_TAX_RATE", "cinco")
	_, err := fromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("STORE_DRIVER", "mongo")
	_, err = fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "vanstock", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/vanstock?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}

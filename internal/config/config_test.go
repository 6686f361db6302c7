package config_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/nfseaudit/internal/config"
	"github.com/MrJamesThe3rd/nfseaudit/internal/reconcile"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "standard", cfg.Audit.RateTable)
	assert.True(t, cfg.Audit.IRThreshold.IsZero())
	assert.Equal(t, 1000, cfg.Audit.GapLimit)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)

	table, err := cfg.RateTable()
	require.NoError(t, err)
	assert.Equal(t, reconcile.TableStandard, table.Name)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUDIT_RATE_TABLE", "hospital")
	t.Setenv("AUDIT_IR_THRESHOLD", "1000")
	t.Setenv("AUDIT_ISS_REFERENCE_RATE", "0.05")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("AUDIT_GAP_LIMIT", "50")

	cfg, err := config.Load()
	require.NoError(t, err)

	table, err := cfg.RateTable()
	require.NoError(t, err)

	assert.Equal(t, reconcile.TableHospital, table.Name)
	assert.True(t, decimal.NewFromInt(1000).Equal(table.IRThreshold))
	assert.True(t, decimal.RequireFromString("0.05").Equal(table.ISSReference))
	assert.True(t, decimal.RequireFromString("215.05").Equal(table.CombinedThreshold))
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 50, cfg.Audit.GapLimit)

	other, err := cfg.RateTableNamed("standard")
	require.NoError(t, err)
	assert.Equal(t, reconcile.TableStandard, other.Name)
	assert.True(t, decimal.NewFromInt(1000).Equal(other.IRThreshold))
}

func TestLoad_InvalidTable(t *testing.T) {
	t.Setenv("AUDIT_RATE_TABLE", "simples")

	_, err := config.Load()
	assert.ErrorIs(t, err, reconcile.ErrUnknownTable)
}

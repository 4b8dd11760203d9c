package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	importapp "github.com/lpcheniris/shopify-demo/internal/application/import"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/config"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/sheet"
)

func loadConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	return cfg
}

const sqliteConfig = `
[database]
driver = "sqlite"
path = ":memory:"

[shopify]
shop = "jewelery.myshopify.com"
access_token = "shpat_test"

[ledger]
enabled = true
backend = "memory"
`

func TestSchemaFromConfig(t *testing.T) {
	schema, err := SchemaFromConfig(config.ColumnsConfig{
		Handle:     "A",
		Title:      "B",
		Price:      "T",
		Options:    []string{"H:I", "J:K"},
		HeaderRows: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "A", schema.Handle)
	assert.Empty(t, schema.Image)
	assert.Equal(t, []sheet.OptionColumns{{Name: "H", Value: "I"}, {Name: "J", Value: "K"}}, schema.Options)
	assert.NoError(t, schema.Validate())

	_, err = SchemaFromConfig(config.ColumnsConfig{Handle: "A", Options: []string{"H"}})
	assert.Error(t, err)
}

func TestNew_SQLite(t *testing.T) {
	cfg := loadConfig(t, sqliteConfig)
	ctx := context.Background()

	app, err := New(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(ctx) })

	require.NoError(t, app.Migrate())
	assert.NoError(t, app.DB.Ping())
	assert.NotNil(t, app.Ledger)
	assert.Equal(t, "jewelery.myshopify.com", app.Session().Shop)
	assert.Equal(t, "assets/jewelery.xlsx", app.Imports.DefaultPath())

	runs, err := app.History.ListRuns(ctx, "jewelery.myshopify.com", importapp.ListRunsFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestNew_PreviewUsesConfiguredColumns(t *testing.T) {
	cfg := loadConfig(t, sqliteConfig+`
[import.columns]
handle = "B"
title = "C"
price = "D"
options = ["E:F"]
header_rows = 0
`)
	ctx := context.Background()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"", "ring", "Ring", "10", "Size", "6"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"", "ring", "", "12", "", "7"}))
	path := filepath.Join(t.TempDir(), "products.xlsx")
	require.NoError(t, f.SaveAs(path))

	app, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(ctx) })

	preview, err := app.Imports.Preview(ctx, path)
	require.NoError(t, err)
	require.Len(t, preview.Items, 1)
	assert.Equal(t, "ring", preview.Items[0].Handle)
	assert.Len(t, preview.Items[0].Variants, 2)
	assert.Equal(t, "Size", preview.Items[0].Options[0].Name)
}

func TestNewMigrator_RejectsSQLite(t *testing.T) {
	cfg := loadConfig(t, sqliteConfig)

	_, err := NewMigrator(cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

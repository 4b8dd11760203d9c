package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	importapp "github.com/lpcheniris/shopify-demo/internal/application/import"
	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
)

func writeConfig(t *testing.T, extra ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(extra, "\n")+`
[log]
level = "error"

[database]
driver = "sqlite"
path = ":memory:"

[shopify]
shop = "jewelery.myshopify.com"
access_token = "shpat_test"
`), 0o600))
	return path
}

func writeSheet(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"Handle", "Title", "Body (HTML)"},
		{"ring", "Ring", "<p>Gold</p>"},
		{"ring"},
		{"necklace", "Necklace"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "products.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPreviewCommand(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t), "preview", writeSheet(t))
	require.NoError(t, err)

	var result importapp.PreviewResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Items, 2)
	assert.Equal(t, "ring", result.Items[0].Handle)
	assert.Equal(t, "necklace", result.Items[1].Handle)
	assert.Equal(t, 3, result.TotalRows)
}

func TestPreviewCommand_MissingFile(t *testing.T) {
	_, err := run(t, "--config", writeConfig(t), "preview", filepath.Join(t.TempDir(), "absent.xlsx"))

	require.Error(t, err)
	assert.Equal(t, exitError, exitCode(err))
}

func TestHistoryCommand_Empty(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t), "history", "--status", "failed")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestHistoryCommand_UnknownRun(t *testing.T) {
	_, err := run(t, "--config", writeConfig(t), "history", "7d4c3f9e-2b1a-4c5d-8e6f-0a1b2c3d4e5f")
	assert.Error(t, err)
}

func TestRetryCommand_InvalidID(t *testing.T) {
	_, err := run(t, "--config", writeConfig(t), "retry", "not-a-uuid")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid run id")
}

func TestMigrateCreateAndList(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "migrate", "--path", dir, "create", "add ledger index")
	require.NoError(t, err)
	assert.Contains(t, out, "000001_add_ledger_index.up.sql")

	out, err = run(t, "--config", cfg, "migrate", "--path", dir, "list")
	require.NoError(t, err)
	assert.Equal(t, "000001_add_ledger_index\n", out)
}

func TestMigrateUp_SQLite(t *testing.T) {
	_, err := run(t, "--config", writeConfig(t), "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestLedgerCommands(t *testing.T) {
	t.Run("disabled ledger", func(t *testing.T) {
		_, err := run(t, "--config", writeConfig(t), "ledger", "forget", "ring")
		assert.ErrorIs(t, err, errLedgerDisabled)
	})

	memory := `
[ledger]
enabled = true
backend = "memory"
`

	t.Run("forget", func(t *testing.T) {
		_, err := run(t, "--config", writeConfig(t, memory), "ledger", "forget", "ring", "necklace")
		assert.NoError(t, err)
	})

	t.Run("check", func(t *testing.T) {
		out, err := run(t, "--config", writeConfig(t, memory), "ledger", "check", "ring")
		require.NoError(t, err)
		assert.JSONEq(t, `{"ring": false}`, out)
	})
}

func TestReportExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		result *importapp.ImportResult
		code   int
	}{
		{"success", &importapp.ImportResult{Status: integration.PublishStatusSuccess}, exitOK},
		{"empty", &importapp.ImportResult{Status: integration.PublishStatusEmpty}, exitOK},
		{"partial", &importapp.ImportResult{
			Status:  integration.PublishStatusPartial,
			Created: []integration.PublishedItem{{Handle: "ring"}},
			Failed:  []integration.FailedItem{{Handle: "necklace"}},
		}, exitPartial},
		{"failed", &importapp.ImportResult{
			Status: integration.PublishStatusFailed,
			Failed: []integration.FailedItem{{Handle: "ring"}},
		}, exitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newImportCmd(&rootOptions{})
			cmd.SetOut(&bytes.Buffer{})

			err := report(cmd, tt.result)

			assert.Equal(t, tt.code, exitCode(err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitError, exitCode(errors.New("boom")))
	assert.Equal(t, exitPartial, exitCode(withCode(exitPartial, errors.New("partial"))))
}

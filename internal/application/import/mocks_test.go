package importapp

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lpcheniris/shopify-demo/internal/domain/bulk"
	"github.com/lpcheniris/shopify-demo/internal/domain/catalog"
	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/domain/shared"
)

// MockCatalogPlatform is a mock implementation of integration.CatalogPlatform
type MockCatalogPlatform struct {
	mock.Mock
}

func (m *MockCatalogPlatform) CreateProduct(ctx context.Context, session integration.Session, item catalog.Item) (*integration.RemoteProduct, error) {
	args := m.Called(ctx, session, item.Handle())
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemoteProduct), args.Error(1)
}

func (m *MockCatalogPlatform) CountProducts(ctx context.Context, session integration.Session) (int, error) {
	args := m.Called(ctx, session)
	return args.Int(0), args.Error(1)
}

// MockHandleLedger is a mock implementation of integration.HandleLedger
type MockHandleLedger struct {
	mock.Mock
}

func (m *MockHandleLedger) IsImported(ctx context.Context, shop, handle string) (bool, error) {
	args := m.Called(ctx, shop, handle)
	return args.Bool(0), args.Error(1)
}

func (m *MockHandleLedger) MarkImported(ctx context.Context, shop, handle string, remoteID int64) (bool, error) {
	args := m.Called(ctx, shop, handle, remoteID)
	return args.Bool(0), args.Error(1)
}

func (m *MockHandleLedger) Forget(ctx context.Context, shop, handle string) error {
	args := m.Called(ctx, shop, handle)
	return args.Error(0)
}

// memoryRunRepository keeps copies of saved runs in a map
type memoryRunRepository struct {
	mu    sync.Mutex
	runs  map[uuid.UUID]bulk.ImportRun
	saves int
}

func newMemoryRunRepository() *memoryRunRepository {
	return &memoryRunRepository{runs: make(map[uuid.UUID]bulk.ImportRun)}
}

func (r *memoryRunRepository) FindByID(_ context.Context, id uuid.UUID) (*bulk.ImportRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	run.Items = append([]bulk.ImportItem(nil), run.Items...)
	return &run, nil
}

func (r *memoryRunRepository) FindRecent(_ context.Context, filter bulk.ImportRunFilter) ([]*bulk.ImportRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*bulk.ImportRun, 0)
	for _, run := range r.runs {
		if filter.Shop != "" && run.Shop != filter.Shop {
			continue
		}
		if filter.Status != nil && run.Status != *filter.Status {
			continue
		}
		run.Items = nil
		out = append(out, &run)
	}
	return out, nil
}

func (r *memoryRunRepository) Save(_ context.Context, run *bulk.ImportRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *run
	cp.Items = append([]bulk.ImportItem(nil), run.Items...)
	r.runs[run.ID] = cp
	r.saves++
	return nil
}

func (r *memoryRunRepository) only(t *testing.T) bulk.ImportRun {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.Len(t, r.runs, 1)
	for _, run := range r.runs {
		return run
	}
	return bulk.ImportRun{}
}

// ---------------------------------------------------------------------------
// Workbook fixtures
// ---------------------------------------------------------------------------

type cells map[string]any

var productHeader = cells{
	"A": "Handle", "B": "Title", "C": "Body (HTML)",
	"H": "Option1 Name", "I": "Option1 Value", "T": "Variant Price", "Y": "Image Src",
}

func writeWorkbook(t *testing.T, rows ...cells) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, r := range rows {
		for col, v := range r {
			require.NoError(t, f.SetCellValue("Sheet1", fmt.Sprintf("%s%d", col, i+1), v))
		}
	}
	path := filepath.Join(t.TempDir(), "jewelery.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// jewelerySheet holds two handles: ring with two sizes and one necklace
func jewelerySheet(t *testing.T) string {
	return writeWorkbook(t,
		productHeader,
		cells{"A": "ring", "B": "Ring", "C": "<p>Gold</p>", "H": "Size", "I": "6", "T": "10.00", "Y": "http://img/ring-1"},
		cells{"A": "ring", "I": "7", "T": "12.50", "Y": "http://img/ring-2"},
		cells{"A": "necklace", "B": "Necklace", "H": "Title", "I": "Default Title", "T": "30"},
	)
}

var testSession = integration.Session{Shop: "jewelery.myshopify.com", AccessToken: "shpat_test"}

func remote(id int64, handle string) *integration.RemoteProduct {
	return &integration.RemoteProduct{ID: id, Handle: handle}
}

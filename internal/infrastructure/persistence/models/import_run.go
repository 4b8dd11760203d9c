package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lpcheniris/shopify-demo/internal/domain/bulk"
	"github.com/lpcheniris/shopify-demo/internal/domain/catalog"
)

// ImportRunModel is the persistence model for the ImportRun aggregate.
type ImportRunModel struct {
	AggregateModel
	Shop         string            `gorm:"type:varchar(255);not null;index"`
	SourceFile   string            `gorm:"type:varchar(512);not null"`
	FileSize     int64             `gorm:"not null;default:0"`
	TotalRows    int               `gorm:"not null;default:0"`
	SkippedRows  int               `gorm:"not null;default:0"`
	Status       bulk.RunStatus    `gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedCount int               `gorm:"not null;default:0"`
	FailedCount  int               `gorm:"not null;default:0"`
	SkippedCount int               `gorm:"not null;default:0"`
	RetryCount   int               `gorm:"not null;default:0"`
	ErrorCode    string            `gorm:"type:varchar(64)"`
	ErrorMessage string            `gorm:"type:text"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
	Items        []ImportItemModel `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ImportRunModel) TableName() string {
	return "import_runs"
}

// ImportItemModel stores one catalog item of a run. Payload is the item
// snapshot as JSON so failed items can be published again.
type ImportItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	RunID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position     int             `gorm:"not null"`
	Handle       string          `gorm:"type:varchar(255);not null"`
	Status       bulk.ItemStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	RemoteID     int64           `gorm:"not null;default:0"`
	ErrorCode    string          `gorm:"type:varchar(64)"`
	ErrorMessage string          `gorm:"type:text"`
	Attempts     int             `gorm:"not null;default:0"`
	Payload      string          `gorm:"type:text;not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ImportItemModel) TableName() string {
	return "import_items"
}

// ToDomain converts the persistence model to a domain ImportRun.
// Items are only present when they were preloaded.
func (m *ImportRunModel) ToDomain() *bulk.ImportRun {
	run := &bulk.ImportRun{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Shop:              m.Shop,
		SourceFile:        m.SourceFile,
		FileSize:          m.FileSize,
		TotalRows:         m.TotalRows,
		SkippedRows:       m.SkippedRows,
		Status:            m.Status,
		CreatedCount:      m.CreatedCount,
		FailedCount:       m.FailedCount,
		SkippedCount:      m.SkippedCount,
		RetryCount:        m.RetryCount,
		ErrorCode:         m.ErrorCode,
		ErrorMessage:      m.ErrorMessage,
		StartedAt:         m.StartedAt,
		CompletedAt:       m.CompletedAt,
		Items:             make([]bulk.ImportItem, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		run.Items = append(run.Items, item.ToDomain())
	}
	return run
}

// FromDomain populates the persistence model from a domain ImportRun.
func (m *ImportRunModel) FromDomain(r *bulk.ImportRun) error {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Shop = r.Shop
	m.SourceFile = r.SourceFile
	m.FileSize = r.FileSize
	m.TotalRows = r.TotalRows
	m.SkippedRows = r.SkippedRows
	m.Status = r.Status
	m.CreatedCount = r.CreatedCount
	m.FailedCount = r.FailedCount
	m.SkippedCount = r.SkippedCount
	m.RetryCount = r.RetryCount
	m.ErrorCode = r.ErrorCode
	m.ErrorMessage = r.ErrorMessage
	m.StartedAt = r.StartedAt
	m.CompletedAt = r.CompletedAt

	m.Items = make([]ImportItemModel, 0, len(r.Items))
	for _, item := range r.Items {
		payload, err := json.Marshal(item.Snapshot)
		if err != nil {
			return err
		}
		m.Items = append(m.Items, ImportItemModel{
			ID:           item.ID,
			RunID:        r.ID,
			Position:     item.Position,
			Handle:       item.Handle,
			Status:       item.Status,
			RemoteID:     item.RemoteID,
			ErrorCode:    item.ErrorCode,
			ErrorMessage: item.ErrorMessage,
			Attempts:     item.Attempts,
			Payload:      string(payload),
			UpdatedAt:    item.UpdatedAt,
		})
	}
	return nil
}

// ToDomain converts the persistence model to a domain ImportItem
func (m *ImportItemModel) ToDomain() bulk.ImportItem {
	var snapshot catalog.ItemSnapshot
	if m.Payload != "" {
		if err := json.Unmarshal([]byte(m.Payload), &snapshot); err != nil {
			snapshot = catalog.ItemSnapshot{Handle: m.Handle}
		}
	}
	return bulk.ImportItem{
		ID:           m.ID,
		Position:     m.Position,
		Handle:       m.Handle,
		Status:       m.Status,
		RemoteID:     m.RemoteID,
		ErrorCode:    m.ErrorCode,
		ErrorMessage: m.ErrorMessage,
		Attempts:     m.Attempts,
		Snapshot:     snapshot,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ImportRunModelFromDomain creates a new persistence model from a domain ImportRun.
func ImportRunModelFromDomain(r *bulk.ImportRun) (*ImportRunModel, error) {
	m := &ImportRunModel{}
	if err := m.FromDomain(r); err != nil {
		return nil, err
	}
	return m, nil
}

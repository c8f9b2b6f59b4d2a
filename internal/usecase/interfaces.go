package usecase

import (
	"context"

	"github.com/xavierca1/mandate-sync/internal/entity"
	"github.com/xavierca1/mandate-sync/internal/infra/integration/airtable"
	"github.com/xavierca1/mandate-sync/internal/infra/integration/sellsy"
)

// RecordStore é a tabela de contratos (Airtable)
type RecordStore interface {
	ListRecords(ctx context.Context) ([]entity.Record, error)
	FindByField(ctx context.Context, field, value string) ([]entity.Record, error)
	PatchRecord(ctx context.Context, id string, fields map[string]any) error
}

// InstallerDirectory resolve referências "rec..." da coluna Installateur
type InstallerDirectory interface {
	GetRecord(ctx context.Context, id string) (*airtable.RawRecord, error)
}

type CRM interface {
	FindCustomer(ctx context.Context, ref string) (*entity.CustomerSnapshot, error)
	SendTemplateEmail(ctx context.Context, ref string, customer *entity.CustomerSnapshot, vars sellsy.TemplateVars) error
	AttachPaymentMethod(ctx context.Context, ref string, mandate *entity.Mandate) error
}

type MandateProvider interface {
	GetMandate(ctx context.Context, id string) (*entity.Mandate, error)
	GetCustomer(ctx context.Context, id string) (*entity.MandateCustomer, error)
}

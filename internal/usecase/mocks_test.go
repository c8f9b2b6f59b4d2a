package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/mandate-sync/internal/entity"
	"github.com/xavierca1/mandate-sync/internal/infra/integration/airtable"
	"github.com/xavierca1/mandate-sync/internal/infra/integration/sellsy"
)

// MockRecordStore
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) ListRecords(ctx context.Context) ([]entity.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Record), args.Error(1)
}

func (m *MockRecordStore) FindByField(ctx context.Context, field, value string) ([]entity.Record, error) {
	args := m.Called(ctx, field, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Record), args.Error(1)
}

func (m *MockRecordStore) PatchRecord(ctx context.Context, id string, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

// MockInstallerDirectory
type MockInstallerDirectory struct {
	mock.Mock
}

func (m *MockInstallerDirectory) GetRecord(ctx context.Context, id string) (*airtable.RawRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*airtable.RawRecord), args.Error(1)
}

// MockCRM
type MockCRM struct {
	mock.Mock
}

func (m *MockCRM) FindCustomer(ctx context.Context, ref string) (*entity.CustomerSnapshot, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CustomerSnapshot), args.Error(1)
}

func (m *MockCRM) SendTemplateEmail(ctx context.Context, ref string, customer *entity.CustomerSnapshot, vars sellsy.TemplateVars) error {
	args := m.Called(ctx, ref, customer, vars)
	return args.Error(0)
}

func (m *MockCRM) AttachPaymentMethod(ctx context.Context, ref string, mandate *entity.Mandate) error {
	args := m.Called(ctx, ref, mandate)
	return args.Error(0)
}

// MockMandateProvider
type MockMandateProvider struct {
	mock.Mock
}

func (m *MockMandateProvider) GetMandate(ctx context.Context, id string) (*entity.Mandate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Mandate), args.Error(1)
}

func (m *MockMandateProvider) GetCustomer(ctx context.Context, id string) (*entity.MandateCustomer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MandateCustomer), args.Error(1)
}

// memoryStore keeps records in memory and applies patches, so a second pass
// sees what the first one wrote.
type memoryStore struct {
	records []entity.Record
	patches []map[string]any
}

func (s *memoryStore) ListRecords(ctx context.Context) ([]entity.Record, error) {
	out := make([]entity.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *memoryStore) FindByField(ctx context.Context, field, value string) ([]entity.Record, error) {
	return nil, nil
}

func (s *memoryStore) PatchRecord(ctx context.Context, id string, fields map[string]any) error {
	s.patches = append(s.patches, fields)
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		if v, ok := fields[entity.FieldInviteSent].(bool); ok {
			s.records[i].InviteSent = v
		}
		if v, ok := fields[entity.FieldMandateLinked].(bool); ok {
			s.records[i].MandateLinked = v
		}
		if v, ok := fields[entity.FieldMandateID].(string); ok {
			s.records[i].MandateID = v
		}
	}
	return nil
}

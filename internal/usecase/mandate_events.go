package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/xavierca1/mandate-sync/internal/entity"
)

// MandateLinker is satisfied by ReconcileUseCase.
type MandateLinker interface {
	LinkMandate(ctx context.Context, rec entity.Record) error
}

// MandateEventsUseCase handles a GoCardless "mandate created" webhook body
// handed over by whatever receives the webhook.
type MandateEventsUseCase struct {
	Records  RecordStore
	Mandates MandateProvider
	Linker   MandateLinker
}

func NewMandateEventsUseCase(records RecordStore, mandates MandateProvider, linker MandateLinker) *MandateEventsUseCase {
	return &MandateEventsUseCase{
		Records:  records,
		Mandates: mandates,
		Linker:   linker,
	}
}

func (uc *MandateEventsUseCase) Execute(ctx context.Context, input MandateEventsInput) MandateEventsOutput {
	log.Printf("📥 Webhook GoCardless recebido (%d eventos)", len(input.Events))

	var out MandateEventsOutput
	for i, event := range input.Events {
		if ctx.Err() != nil {
			log.Printf("⚠️ Webhook interrompido, %d eventos restantes não tratados", len(input.Events)-i)
			break
		}
		if !event.IsMandateCreated() || event.Links.Mandate == "" || event.Links.Customer == "" {
			out.Ignored++
			continue
		}

		log.Printf("✅ Novo mandato criado: %s para cliente GoCardless %s", event.Links.Mandate, event.Links.Customer)
		if err := uc.handleCreated(context.WithoutCancel(ctx), event.Links.Customer, event.Links.Mandate); err != nil {
			log.Printf("❌ Evento %s: %v", event.ID, err)
			out.Errors = append(out.Errors, err)
			continue
		}
		out.Handled++
	}
	return out
}

// handleCreated matches the GoCardless customer to a contract by email,
// stores the mandate id and links it right away. A linked record receiving a
// different mandate gets the new one attached; the same mandate is a no-op.
func (uc *MandateEventsUseCase) handleCreated(ctx context.Context, gcCustomerID, mandateID string) error {
	customer, err := uc.Mandates.GetCustomer(ctx, gcCustomerID)
	if err != nil {
		return technical("GOCARDLESS_GET_CUSTOMER", err)
	}

	log.Printf("🔍 Buscando %s no Airtable...", customer.Email)
	records, err := uc.Records.FindByField(ctx, entity.FieldEmail, customer.Email)
	if err != nil {
		return technical("AIRTABLE_FIND_BY_EMAIL", err)
	}
	if len(records) == 0 {
		return &DomainError{Code: "RECORD_NOT_FOUND", Message: fmt.Sprintf("nenhum registro com o email %s", customer.Email)}
	}

	rec := records[0]
	if rec.CRMCustomerRef == "" {
		return &DomainError{Code: "MISSING_CUSTOMER_REF", Message: fmt.Sprintf("registro %s sem ID Sellsy", rec.ID), Err: entity.ErrMissingCustomerRef}
	}

	if rec.MandateLinked && rec.MandateID == mandateID {
		log.Printf("⏩ Mandato %s já associado ao registro %s, nada a fazer", mandateID, rec.ID)
		return nil
	}
	if rec.MandateLinked {
		log.Printf("🔄 Registro %s troca o mandato %s por %s", rec.ID, rec.MandateID, mandateID)
	}

	if err := uc.Records.PatchRecord(ctx, rec.ID, map[string]any{entity.FieldMandateID: mandateID}); err != nil {
		return technical("AIRTABLE_PATCH_MANDATE_ID", err)
	}
	log.Printf("✅ ID do mandato gravado no Airtable (%s)", rec.ID)

	rec.MandateID = mandateID
	return uc.Linker.LinkMandate(ctx, rec)
}

package usecase

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/mandate-sync/internal/entity"
	"github.com/xavierca1/mandate-sync/internal/infra/integration/sellsy"
)

type ReconcileUseCase struct {
	Records        RecordStore
	Installers     InstallerDirectory
	CRM            CRM
	Mandates       MandateProvider
	MandateLinkURL string
	Now            func() time.Time
}

func NewReconcileUseCase(
	records RecordStore,
	installers InstallerDirectory,
	crm CRM,
	mandates MandateProvider,
	mandateLinkURL string,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		Records:        records,
		Installers:     installers,
		CRM:            crm,
		Mandates:       mandates,
		MandateLinkURL: mandateLinkURL,
		Now:            time.Now,
	}
}

// RunPass reads every record, then handles them one by one in store order.
// A failure only affects its own record and action.
func (uc *ReconcileUseCase) RunPass(ctx context.Context) PassReport {
	report := PassReport{RunID: uuid.New().String(), StartedAt: uc.Now()}
	log.Printf("📡 [%s] Verificando mudanças no Airtable...", report.RunID)

	records, err := uc.Records.ListRecords(ctx)
	report.Records = len(records)
	if err != nil {
		report.ListErr = err
		if len(records) == 0 {
			log.Printf("❌ [%s] Erro do Airtable, passada encerrada: %v", report.RunID, err)
			report.FinishedAt = uc.Now()
			return report
		}
		log.Printf("⚠️ [%s] Listagem incompleta (%d registros lidos): %v", report.RunID, len(records), err)
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			log.Printf("⚠️ [%s] Passada interrompida", report.RunID)
			break
		}
		// um registro começado vai até o fim; o ctx só é checado entre registros
		uc.processRecord(context.WithoutCancel(ctx), rec, &report)
	}

	report.FinishedAt = uc.Now()
	log.Printf("🏁 [%s] %d registros | %d emails enviados | %d já enviados | %d mandatos associados | %d ignorados | %d falhas",
		report.RunID, report.Records, report.InvitesSent, report.AlreadySent, report.MandatesLinked, report.Skipped, len(report.Failures))
	return report
}

func (uc *ReconcileUseCase) processRecord(ctx context.Context, rec entity.Record, report *PassReport) {
	acted := false

	switch {
	case rec.NeedsInvite():
		acted = true
		if err := uc.SendInvite(ctx, rec); err != nil {
			report.fail(rec.ID, ActionInvite, err)
		} else {
			report.InvitesSent++
		}
	case rec.Signed && rec.InviteSent:
		log.Printf("⏩ Convite já enviado para %s, ignorando.", rec.DisplayName())
		report.AlreadySent++
	}

	if rec.NeedsLink() {
		acted = true
		if err := uc.LinkMandate(ctx, rec); err != nil {
			report.fail(rec.ID, ActionLink, err)
		} else {
			report.MandatesLinked++
		}
	}

	if !acted && !(rec.Signed && rec.InviteSent) {
		report.Skipped++
	}
}

// SendInvite envia o email de pedido de mandato e só então marca o registro.
func (uc *ReconcileUseCase) SendInvite(ctx context.Context, rec entity.Record) error {
	log.Printf("📨 Preparando email para %s (Email: %s, ID Sellsy: %s)", rec.DisplayName(), rec.Email, rec.CRMCustomerRef)

	if rec.CRMCustomerRef == "" {
		log.Printf("❌ Registro %s sem ID Sellsy, impossível enviar o convite", rec.ID)
		return &DomainError{Code: "MISSING_CUSTOMER_REF", Message: "registro sem ID Sellsy", Err: entity.ErrMissingCustomerRef}
	}

	installer := uc.ResolveInstallerName(ctx, rec.InstallerRefs)

	customer, err := uc.CRM.FindCustomer(ctx, rec.CRMCustomerRef)
	if err != nil {
		log.Printf("❌ Impossível continuar sem os dados do cliente %s: %v", rec.CRMCustomerRef, err)
		return &DomainError{Code: "CUSTOMER_NOT_FOUND", Message: "cliente sellsy indisponível: " + err.Error(), Err: err}
	}
	if err := customer.Validate(); err != nil {
		return &DomainError{Code: "INCOMPLETE_CUSTOMER", Message: err.Error(), Err: err}
	}

	vars := sellsy.TemplateVars{
		sellsy.VarInstaller:     installer,
		sellsy.VarSignatureDate: rec.SignatureDate,
		sellsy.VarMandateLink:   uc.MandateLinkURL,
	}
	if err := uc.CRM.SendTemplateEmail(ctx, rec.CRMCustomerRef, customer, vars); err != nil {
		log.Printf("❌ Email não enviado para %s, Airtable não será atualizado: %v", customer.Email, err)
		return technical("SELLSY_SEND_EMAIL", err)
	}

	fields := map[string]any{
		entity.FieldInviteSent: true,
		entity.FieldInviteDate: uc.Now().Format(entity.DateLayout),
	}
	if err := uc.Records.PatchRecord(ctx, rec.ID, fields); err != nil {
		log.Printf("❌ Email enviado mas flag não gravada no registro %s: %v", rec.ID, err)
		return technical("AIRTABLE_PATCH_INVITE", err)
	}

	log.Printf("✅ Campo '%s' atualizado no Airtable para %s", entity.FieldInviteSent, rec.ID)
	return nil
}

// LinkMandate adiciona o mandato GoCardless como meio de pagamento no Sellsy.
func (uc *ReconcileUseCase) LinkMandate(ctx context.Context, rec entity.Record) error {
	if rec.CRMCustomerRef == "" {
		log.Printf("❌ Registro %s tem mandato %s mas nenhum ID Sellsy", rec.ID, rec.MandateID)
		return &DomainError{Code: "MISSING_CUSTOMER_REF", Message: "registro sem ID Sellsy", Err: entity.ErrMissingCustomerRef}
	}

	log.Printf("🔄 Associando mandato %s ao cliente Sellsy %s", rec.MandateID, rec.CRMCustomerRef)

	mandate, err := uc.Mandates.GetMandate(ctx, rec.MandateID)
	if err != nil {
		log.Printf("❌ Erro ao buscar mandato %s na GoCardless: %v", rec.MandateID, err)
		return technical("GOCARDLESS_GET_MANDATE", err)
	}

	if err := uc.CRM.AttachPaymentMethod(ctx, rec.CRMCustomerRef, mandate); err != nil {
		log.Printf("❌ Erro ao adicionar mandato %s no Sellsy: %v", rec.MandateID, err)
		return technical("SELLSY_ATTACH_MANDATE", err)
	}

	fields := map[string]any{
		entity.FieldMandateLinked: true,
		entity.FieldLinkDate:      uc.Now().Format(entity.DateLayout),
	}
	if err := uc.Records.PatchRecord(ctx, rec.ID, fields); err != nil {
		log.Printf("❌ Mandato associado mas flag não gravada no registro %s: %v", rec.ID, err)
		return technical("AIRTABLE_PATCH_LINK", err)
	}

	log.Printf("✅ Status de associação do mandato atualizado no Airtable")
	return nil
}

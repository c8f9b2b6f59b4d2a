package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Colunas da tabela de contratos no Airtable
const (
	FieldSigned        = "Contrat abonnement signe"
	FieldCRMRef        = "ID_Sellsy"
	FieldInviteSent    = "Email Mandat sellsy"
	FieldInviteDate    = "Date envoi mandat"
	FieldMandateID     = "Mandat GoCardless"
	FieldMandateLinked = "Mandat associé à Sellsy"
	FieldLinkDate      = "Date association mandat"
	FieldInstaller     = "Installateur"
	FieldSignatureDate = "Date de signature de contrat"
	FieldName          = "Nom"
	FieldEmail         = "Email"
)

// DateLayout is the format written to the date columns.
const DateLayout = "2006-01-02"

type State string

const (
	StateNew         State = "NEW"
	StateNeedsInvite State = "NEEDS_INVITE"
	StateInviteSent  State = "INVITE_SENT"
	StateNeedsLink   State = "NEEDS_LINK"
	StateLinked      State = "LINKED"
)

// Record is one row of the contracts table. Only the flag and date columns
// are ever written back by this service.
type Record struct {
	ID             string
	Signed         bool
	CRMCustomerRef string
	InviteSent     bool
	MandateID      string
	MandateLinked  bool
	InstallerRefs  []string
	SignatureDate  string
	Name           string
	Email          string
}

// NewRecordFromFields maps the raw Airtable "fields" object (decoded with
// encoding/json) onto a Record.
func NewRecordFromFields(id string, fields map[string]any) Record {
	return Record{
		ID:             id,
		Signed:         truthy(fields[FieldSigned]),
		CRMCustomerRef: strings.TrimSpace(text(fields[FieldCRMRef])),
		InviteSent:     truthy(fields[FieldInviteSent]),
		MandateID:      strings.TrimSpace(text(fields[FieldMandateID])),
		MandateLinked:  truthy(fields[FieldMandateLinked]),
		InstallerRefs:  texts(fields[FieldInstaller]),
		SignatureDate:  text(fields[FieldSignatureDate]),
		Name:           text(fields[FieldName]),
		Email:          strings.TrimSpace(text(fields[FieldEmail])),
	}
}

// NeedsInvite: contrato assinado e email ainda não enviado.
func (r Record) NeedsInvite() bool {
	return r.Signed && !r.InviteSent
}

// NeedsLink: mandato existe mas ainda não foi associado no CRM.
func (r Record) NeedsLink() bool {
	return r.MandateID != "" && !r.MandateLinked
}

// State reports the most advanced state the flags describe. The invite and
// link actions are gated independently by NeedsInvite and NeedsLink, so a
// record can be eligible for both in the same pass.
func (r Record) State() State {
	switch {
	case r.MandateLinked:
		return StateLinked
	case r.NeedsLink():
		return StateNeedsLink
	case r.Signed && r.InviteSent:
		return StateInviteSent
	case r.Signed:
		return StateNeedsInvite
	default:
		return StateNew
	}
}

// DisplayName is used in log lines only.
func (r Record) DisplayName() string {
	if r.Name == "" {
		return "Client"
	}
	return r.Name
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return strings.TrimSpace(t) != ""
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		if len(t) == 0 {
			return ""
		}
		return text(t[0])
	default:
		return fmt.Sprint(t)
	}
}

func texts(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := strings.TrimSpace(text(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := strings.TrimSpace(text(t)); s != "" {
			return []string{s}
		}
		return nil
	}
}

package usecase

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/xavierca1/mandate-sync/internal/entity"
)

// InstallerPlaceholder is sent when no installer name can be resolved.
const InstallerPlaceholder = "votre installateur"

// ID de registro Airtable: "rec" + 14 caracteres alfanuméricos
var recordRefPattern = regexp.MustCompile(`^rec[A-Za-z0-9]{14}$`)

func isRecordRef(ref string) bool {
	return recordRefPattern.MatchString(ref)
}

// ResolveInstallerName turns the Installateur column into a display name.
// Plain text is used as-is; "rec..." references are read from the installers
// table. Unresolvable entries are dropped and, if nothing is left, the
// placeholder is returned.
func (uc *ReconcileUseCase) ResolveInstallerName(ctx context.Context, refs []string) string {
	names := make([]string, 0, len(refs))

	for _, ref := range refs {
		if !isRecordRef(ref) {
			names = append(names, ref)
			continue
		}
		if name := uc.lookupInstaller(ctx, ref); name != "" {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return InstallerPlaceholder
	}
	return strings.Join(names, ", ")
}

func (uc *ReconcileUseCase) lookupInstaller(ctx context.Context, id string) string {
	if uc.Installers == nil {
		log.Printf("⚠️ Tabela de instaladores não configurada, referência %s ignorada", id)
		return ""
	}

	raw, err := uc.Installers.GetRecord(ctx, id)
	if err != nil {
		log.Printf("⚠️ Instalador %s não encontrado: %v", id, err)
		return ""
	}

	return strings.TrimSpace(entity.NewRecordFromFields(raw.ID, raw.Fields).Name)
}

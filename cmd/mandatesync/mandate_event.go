package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xavierca1/mandate-sync/internal/usecase"
)

func mandateEventCmd(loaded func() *viper.Viper) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "mandate-event",
		Short: "Processa um corpo de webhook GoCardless (mandates/created)",
		Long: `Lê o JSON do webhook de um arquivo ou da entrada padrão.

Exemplos:
  mandatesync mandate-event --file webhook.json
  cat webhook.json | mandatesync mandate-event`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			var input usecase.MandateEventsInput
			if err := json.NewDecoder(in).Decode(&input); err != nil {
				return fmt.Errorf("webhook inválido: %w", err)
			}

			a, err := newApp(loaded())
			if err != nil {
				return err
			}
			defer a.Close()

			uc := usecase.NewMandateEventsUseCase(a.contracts, a.gocardless, a.reconcile)
			out := uc.Execute(cmd.Context(), input)

			log.Printf("📊 Eventos: %d tratados, %d ignorados, %d erros", out.Handled, out.Ignored, len(out.Errors))
			if len(out.Errors) > 0 {
				return fmt.Errorf("%d evento(s) falharam", len(out.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "arquivo JSON do webhook (padrão: stdin)")
	return cmd
}

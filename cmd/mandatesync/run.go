package main

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xavierca1/mandate-sync/internal/infra/http/handlers"
	opsmetrics "github.com/xavierca1/mandate-sync/internal/infra/http/middleware"
	"github.com/xavierca1/mandate-sync/internal/infra/worker"
)

func runCmd(loaded func() *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Roda o loop de reconciliação Airtable -> Sellsy -> GoCardless",
		Long: `Roda uma passada imediatamente e depois uma a cada CHECK_INTERVAL segundos.

Exemplos:
  mandatesync run
  mandatesync run --once
  mandatesync run --interval 60 --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(loaded())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()

			log.Println("🚀 Iniciando sincronização Airtable / Sellsy / GoCardless")

			poller := worker.NewPollWorker(a.reconcile, a.cfg.CheckInterval, a.cfg.RunOnce, opsmetrics.RecordPass)

			if a.cfg.MetricsAddr != "" && !a.cfg.RunOnce {
				health := handlers.NewHealthHandler(a.cfg.Presence(), poller.LastReport)
				go serveOps(ctx, a.cfg.MetricsAddr, health)
			}

			poller.Start(ctx)
			log.Println("👋 Encerrado")
			return nil
		},
	}

	cmd.Flags().Bool("once", false, "roda uma única passada e sai (RUN_ONCE)")
	cmd.Flags().Int("interval", 0, "segundos entre passadas (CHECK_INTERVAL)")
	return cmd
}

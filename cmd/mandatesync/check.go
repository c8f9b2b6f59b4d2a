package main

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func checkCmd(loaded func() *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Mostra a configuração e testa a conexão com Airtable, Sellsy e GoCardless",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(loaded())
			if err != nil {
				return err
			}
			defer a.Close()

			presence := a.cfg.Presence()
			keys := make([]string, 0, len(presence))
			for k := range presence {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			log.Println("🔧 Configuração:")
			for _, k := range keys {
				mark := "✅"
				if !presence[k] {
					mark = "❌"
				}
				log.Printf("   %s %s", mark, k)
			}
			log.Printf("   tabela=%q instaladores=%q template=%s gocardless=%s intervalo=%s",
				a.cfg.Airtable.Table, a.cfg.Airtable.InstallersTable, a.cfg.Sellsy.TemplateID,
				a.cfg.GoCardless.Environment, a.cfg.CheckInterval)

			ctx := cmd.Context()

			checks := []struct {
				name string
				ping func(context.Context) error
			}{
				{"Airtable", a.contracts.Ping},
				{"Sellsy", a.sellsy.Ping},
				{"GoCardless", func(ctx context.Context) error {
					n, err := a.gocardless.ListCreditors(ctx)
					if err == nil {
						log.Printf("   GoCardless: %d creditor(s)", n)
					}
					return err
				}},
			}

			failed := 0
			for _, c := range checks {
				if err := c.ping(ctx); err != nil {
					log.Printf("❌ %s: %v", c.name, err)
					failed++
					continue
				}
				log.Printf("✅ %s: conexão OK", c.name)
			}

			if failed > 0 {
				return fmt.Errorf("%d de %d conexões falharam", failed, len(checks))
			}
			return nil
		},
	}
}

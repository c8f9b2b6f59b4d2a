package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xavierca1/mandate-sync/internal/config"
	"github.com/xavierca1/mandate-sync/internal/infra/activitylog"
	"github.com/xavierca1/mandate-sync/internal/infra/integration/airtable"
	"github.com/xavierca1/mandate-sync/internal/infra/integration/gocardless"
	"github.com/xavierca1/mandate-sync/internal/infra/integration/sellsy"
	"github.com/xavierca1/mandate-sync/internal/usecase"
)

var Version = "dev"

func main() {
	var envFile string
	var v *viper.Viper
	loaded := func() *viper.Viper { return v }

	rootCmd := &cobra.Command{
		Use:           "mandatesync",
		Short:         "Envia convites de mandato e associa mandatos GoCardless no Sellsy",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "arquivo .env a carregar")
	flags.String("log-dir", "", "diretório do activity log (LOG_DIR)")
	flags.String("metrics-addr", "", "endereço do servidor /health e /metrics (METRICS_ADDR)")

	// o viper real só existe depois do parse das flags (precisa do --env-file)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		v = config.NewViper(envFile)
		return bindFlags(v, rootCmd, cmd)
	}

	rootCmd.AddCommand(runCmd(loaded))
	rootCmd.AddCommand(checkCmd(loaded))
	rootCmd.AddCommand(mandateEventCmd(loaded))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// bindFlags liga as flags globais e as do subcomando às chaves do viper.
func bindFlags(v *viper.Viper, root, cmd *cobra.Command) error {
	global := map[string]string{"log_dir": "log-dir", "metrics_addr": "metrics-addr"}
	for key, name := range global {
		if err := v.BindPFlag(key, root.PersistentFlags().Lookup(name)); err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
	}

	local := map[string]string{"run_once": "once", "check_interval": "interval"}
	for key, name := range local {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
	}
	return nil
}

// app reúne os clientes montados a partir da Config
type app struct {
	cfg        *config.Config
	logWriter  *activitylog.Writer
	contracts  *airtable.Client
	installers usecase.InstallerDirectory
	sellsy     *sellsy.Client
	gocardless *gocardless.Client
	reconcile  *usecase.ReconcileUseCase
}

func newApp(v *viper.Viper) (*app, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	logWriter := activitylog.New(cfg.LogDir, os.Stdout)
	log.SetOutput(logWriter)
	log.SetFlags(0)

	for _, w := range cfg.Validate() {
		log.Printf("⚠️ %s", w)
	}

	a := &app{cfg: cfg, logWriter: logWriter}

	a.contracts = airtable.NewClient(cfg.Airtable.APIKey, cfg.Airtable.APIURL, cfg.Airtable.BaseID, cfg.Airtable.Table, cfg.HTTPTimeout)
	if cfg.Airtable.InstallersTable != "" {
		a.installers = airtable.NewClient(cfg.Airtable.APIKey, cfg.Airtable.APIURL, cfg.Airtable.BaseID, cfg.Airtable.InstallersTable, cfg.HTTPTimeout)
	}

	signer := sellsy.NewSigner(cfg.Sellsy.ConsumerToken, cfg.Sellsy.ConsumerSecret, cfg.Sellsy.UserToken, cfg.Sellsy.UserSecret)
	a.sellsy = sellsy.NewClient(signer, sellsy.Options{
		APIURL:     cfg.Sellsy.APIURL,
		TemplateID: cfg.Sellsy.TemplateID,
		RetryDelay: cfg.Sellsy.RetryDelay,
		Timeout:    cfg.HTTPTimeout,
	})

	a.gocardless = gocardless.NewClient(cfg.GoCardless.AccessToken, gocardless.BaseURLFor(cfg.GoCardless.Environment), cfg.HTTPTimeout)

	a.reconcile = usecase.NewReconcileUseCase(a.contracts, a.installers, a.sellsy, a.gocardless, cfg.MandateLinkURL)
	return a, nil
}

func (a *app) Close() {
	a.logWriter.Close()
}

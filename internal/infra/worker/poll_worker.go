package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/xavierca1/mandate-sync/internal/usecase"
)

type PassRunner interface {
	RunPass(ctx context.Context) usecase.PassReport
}

// PollWorker roda uma passada logo ao iniciar e depois uma a cada interval.
// Em modo once roda uma única passada e retorna.
type PollWorker struct {
	runner   PassRunner
	interval time.Duration
	once     bool
	onPass   func(usecase.PassReport)

	mu   sync.RWMutex
	last *usecase.PassReport
}

func NewPollWorker(runner PassRunner, interval time.Duration, once bool, onPass func(usecase.PassReport)) *PollWorker {
	return &PollWorker{
		runner:   runner,
		interval: interval,
		once:     once,
		onPass:   onPass,
	}
}

func (w *PollWorker) Start(ctx context.Context) {
	if w.once {
		log.Println("🕒 Modo execução única")
		w.pass(ctx)
		return
	}

	log.Printf("🕒 Poll Worker iniciado (intervalo %s)", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.pass(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Poll Worker encerrado")
			return
		case <-ticker.C:
			w.pass(ctx)
		}
	}
}

// LastReport devolve o relatório da última passada concluída.
func (w *PollWorker) LastReport() (usecase.PassReport, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.last == nil {
		return usecase.PassReport{}, false
	}
	return *w.last, true
}

func (w *PollWorker) pass(ctx context.Context) {
	report := w.runner.RunPass(ctx)

	w.mu.Lock()
	w.last = &report
	w.mu.Unlock()

	if w.onPass != nil {
		w.onPass(report)
	}
}

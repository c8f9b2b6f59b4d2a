package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/xavierca1/mandate-sync/internal/usecase"
)

type LastPassFunc func() (usecase.PassReport, bool)

type HealthHandler struct {
	Config    map[string]bool
	LastPass  LastPassFunc
	StartTime time.Time
}

type PassSummary struct {
	RunID          string    `json:"run_id"`
	FinishedAt     time.Time `json:"finished_at"`
	Records        int       `json:"records"`
	InvitesSent    int       `json:"invites_sent"`
	MandatesLinked int       `json:"mandates_linked"`
	Failures       int       `json:"failures"`
	ListError      string    `json:"list_error,omitempty"`
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
	LastPass     *PassSummary      `json:"last_pass,omitempty"`
}

func NewHealthHandler(presence map[string]bool, last LastPassFunc) *HealthHandler {
	return &HealthHandler{
		Config:    presence,
		LastPass:  last,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)
	status := "healthy"

	for key, present := range h.Config {
		if present {
			deps[key] = "configured"
		} else {
			deps[key] = "not configured"
			status = "degraded"
		}
	}

	var summary *PassSummary
	if h.LastPass != nil {
		if report, ok := h.LastPass(); ok {
			summary = &PassSummary{
				RunID:          report.RunID,
				FinishedAt:     report.FinishedAt,
				Records:        report.Records,
				InvitesSent:    report.InvitesSent,
				MandatesLinked: report.MandatesLinked,
				Failures:       len(report.Failures),
			}
			// Airtable fora do ar: nenhuma ação foi possível
			if report.ListErr != nil {
				summary.ListError = report.ListErr.Error()
				status = "degraded"
			}
		}
	}

	response := HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
		LastPass:     summary,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "degraded" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

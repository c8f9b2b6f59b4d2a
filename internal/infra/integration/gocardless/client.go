package gocardless

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	gcsdk "github.com/gocardless/gocardless-pro-go/v4"

	"github.com/xavierca1/mandate-sync/internal/entity"
)

const (
	LiveURL    = "https://api.gocardless.com"
	SandboxURL = "https://api-sandbox.gocardless.com"
	APIVersion = "2015-07-06"
)

// Client is a read-only pass-through to the GoCardless Pro API on top of the
// official SDK. Errors are returned to the caller wrapped with the operation.
type Client struct {
	service *gcsdk.Service
	// initErr: configuração recusada pelo SDK, devolvida em toda chamada
	initErr error
}

// BaseURLFor: "sandbox" usa a API de testes, qualquer outro valor usa live
func BaseURLFor(environment string) string {
	if environment == "sandbox" {
		return SandboxURL
	}
	return LiveURL
}

// NewClient never fails: with a missing token the loop keeps running and
// each GoCardless call reports the configuration error.
func NewClient(accessToken, baseURL string, timeout time.Duration) *Client {
	config, err := gcsdk.NewConfig(accessToken,
		gcsdk.WithEndpoint(baseURL),
		gcsdk.WithClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		log.Printf("⚠️ GoCardless: configuração inválida: %v", err)
		return &Client{initErr: fmt.Errorf("gocardless config: %w", err)}
	}

	service, err := gcsdk.New(config)
	if err != nil {
		log.Printf("⚠️ GoCardless: erro ao criar cliente: %v", err)
		return &Client{initErr: fmt.Errorf("gocardless client: %w", err)}
	}
	return &Client{service: service}
}

func (c *Client) GetMandate(ctx context.Context, id string) (*entity.Mandate, error) {
	if c.initErr != nil {
		return nil, c.initErr
	}

	m, err := c.service.Mandates.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("gocardless mandates.get %s: %w", id, err)
	}
	return &entity.Mandate{
		ID:        m.Id,
		Reference: m.Reference,
		Scheme:    m.Scheme,
		Status:    m.Status,
	}, nil
}

func (c *Client) GetCustomer(ctx context.Context, id string) (*entity.MandateCustomer, error) {
	if c.initErr != nil {
		return nil, c.initErr
	}

	cu, err := c.service.Customers.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("gocardless customers.get %s: %w", id, err)
	}
	return &entity.MandateCustomer{ID: cu.Id, Email: cu.Email}, nil
}

// ListCreditors devolve quantos credores a conta enxerga (teste de conexão).
func (c *Client) ListCreditors(ctx context.Context) (int, error) {
	if c.initErr != nil {
		return 0, c.initErr
	}

	result, err := c.service.Creditors.List(ctx, gcsdk.CreditorListParams{})
	if err != nil {
		return 0, fmt.Errorf("gocardless creditors.list: %w", err)
	}
	return len(result.Creditors), nil
}

package sellsy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xavierca1/mandate-sync/internal/entity"
)

const DefaultAPIURL = "https://apifeed.sellsy.com/0/"

type Client struct {
	apiURL     string
	templateID string
	retryDelay time.Duration
	signer     *Signer
	http       *http.Client
	now        func() time.Time
}

type Options struct {
	APIURL     string
	TemplateID string
	// RetryDelay é a espera antes da segunda tentativa com ID inteiro
	RetryDelay time.Duration
	Timeout    time.Duration
}

func NewClient(signer *Signer, opts Options) *Client {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	return &Client{
		apiURL:     opts.APIURL,
		templateID: opts.TemplateID,
		retryDelay: opts.RetryDelay,
		signer:     signer,
		http:       &http.Client{Timeout: opts.Timeout},
		now:        time.Now,
	}
}

// FindCustomer looks a customer up in two attempts. Sellsy accepts the client
// id as string or integer depending on the account, inconsistently, so the
// first attempt sends the ref as given and the second, after RetryDelay,
// sends it coerced to an integer. A ref that is not numeric gets one attempt.
func (c *Client) FindCustomer(ctx context.Context, ref string) (*entity.CustomerSnapshot, error) {
	log.Printf("🔍 Sellsy: buscando cliente %s...", ref)

	snapshot, err := c.GetCustomer(ctx, ref)
	if err == nil {
		return snapshot, nil
	}

	intRef, convErr := strconv.Atoi(ref)
	if convErr != nil {
		log.Printf("❌ Sellsy: impossível converter o ID '%s' em inteiro", ref)
		return nil, err
	}

	log.Printf("🔄 Sellsy: nova tentativa com ID inteiro %d", intRef)
	if err := sleep(ctx, c.retryDelay); err != nil {
		return nil, err
	}
	return c.GetCustomer(ctx, intRef)
}

// GetCustomer is a single Client.getOne call. Any failure, including a
// record without email or forename, is returned as an error.
func (c *Client) GetCustomer(ctx context.Context, ref any) (*entity.CustomerSnapshot, error) {
	raw, err := c.call(ctx, "Client.getOne", clientGetOneParams{ClientID: ref})
	if err != nil {
		return nil, err
	}

	var data clientGetOneResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("erro decode cliente sellsy: %w", err)
	}

	snapshot := &entity.CustomerSnapshot{
		FirstName: data.Contact.Forename,
		LastName:  data.Contact.Name,
		Email:     data.Corporation.Email,
		Company:   data.Corporation.Name,
		Phone:     data.Corporation.Mobile,
	}
	if err := snapshot.Validate(); err != nil {
		log.Printf("❌ Sellsy: dados incompletos: email=%q prénom=%q nom=%q", snapshot.Email, snapshot.FirstName, snapshot.LastName)
		return nil, err
	}

	log.Printf("✅ Sellsy: cliente encontrado: %s", snapshot.FullName())
	return snapshot, nil
}

// SendTemplateEmail envia o template fixo (mailid) para o email do cliente.
func (c *Client) SendTemplateEmail(ctx context.Context, ref string, customer *entity.CustomerSnapshot, vars TemplateVars) error {
	params := sendOneParams{
		LinkedType: "client",
		LinkedID:   coerceRef(ref),
		Emails:     []string{customer.Email},
		MailID:     c.templateID,
		UserIDFrom: "staff",
		CustomVars: vars,
	}

	if _, err := c.call(ctx, "Mails.sendOne", params); err != nil {
		return err
	}

	log.Printf("✅ Sellsy: email enviado para %s (template %s)", customer.Email, c.templateID)
	return nil
}

// AttachPaymentMethod registers the mandate as the active, default direct
// debit payment mode of the client.
func (c *Client) AttachPaymentMethod(ctx context.Context, ref string, mandate *entity.Mandate) error {
	params := paymentModeParams{
		ClientID:  coerceRef(ref),
		Label:     "Mandat GoCardless " + mandate.Reference,
		Ident:     mandate.ID,
		Type:      "directdebit",
		Active:    "Y",
		DefaultPm: "Y",
		Data: paymentModeData{
			BankName:        "GoCardless",
			MandateRef:      mandate.Reference,
			MandateSignDate: c.now().Format(entity.DateLayout),
			Scheme:          strings.ToLower(mandate.Scheme),
		},
	}

	raw, err := c.call(ctx, "ClientPaymentModes.create", params)
	if err != nil {
		return err
	}

	log.Printf("✅ Sellsy: mandato %s adicionado ao cliente %s (payment mode %s)", mandate.ID, ref, string(raw))
	return nil
}

// Ping lista um único cliente para validar as credenciais.
func (c *Client) Ping(ctx context.Context) error {
	var params getListParams
	params.Pagination.NbPerPage = 1
	_, err := c.call(ctx, "Client.getList", params)
	return err
}

func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	form, err := c.signer.Sign(method, params)
	if err != nil {
		return nil, err
	}
	log.Printf("🔧 Sellsy: %s %s", method, form.Get("do_in"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro request sellsy %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro leitura resposta sellsy %s: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Method: method, HTTPStatus: resp.StatusCode, Detail: string(body)}
	}

	var result apiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("erro decode sellsy %s: %w", method, err)
	}
	if result.Status != "success" {
		detail := string(result.Error)
		if detail == "" {
			detail = string(body)
		}
		return nil, &APIError{Method: method, Detail: detail}
	}

	return result.Response, nil
}

// coerceRef: inteiro quando possível, senão a string original
func coerceRef(ref string) any {
	if n, err := strconv.Atoi(ref); err == nil {
		return n
	}
	return ref
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

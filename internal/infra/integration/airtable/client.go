package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xavierca1/mandate-sync/internal/entity"
)

// Client fala com uma única tabela de uma base Airtable.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient monta a URL da tabela: <apiURL>/<baseID>/<table>
func NewClient(apiKey, apiURL, baseID, table string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: fmt.Sprintf("%s/%s/%s", strings.TrimRight(apiURL, "/"), url.PathEscape(baseID), url.PathEscape(table)),
		http:    &http.Client{Timeout: timeout},
	}
}

// ListRecords follows the offset cursor until the store stops returning one.
// If a page fails, the records accumulated so far are returned with the error.
func (c *Client) ListRecords(ctx context.Context) ([]entity.Record, error) {
	return c.list(ctx, url.Values{})
}

// FindByField lists the records whose field equals value.
func (c *Client) FindByField(ctx context.Context, field, value string) ([]entity.Record, error) {
	q := url.Values{}
	q.Set("filterByFormula", fmt.Sprintf("{%s}='%s'", field, formulaEscaper.Replace(value)))
	return c.list(ctx, q)
}

// escapa \ e ' numa única passada
var formulaEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func (c *Client) list(ctx context.Context, query url.Values) ([]entity.Record, error) {
	var records []entity.Record
	offset := ""
	page := 0
	seen := map[string]bool{}

	for {
		page++
		if offset != "" {
			query.Set("offset", offset)
		}

		target := c.baseURL
		if len(query) > 0 {
			target += "?" + query.Encode()
		}

		var resp listResponse
		if err := c.getJSON(ctx, "list", target, &resp); err != nil {
			log.Printf("❌ Airtable: página %d falhou (%d registros acumulados): %v", page, len(records), err)
			return records, err
		}

		for _, raw := range resp.Records {
			records = append(records, entity.NewRecordFromFields(raw.ID, raw.Fields))
		}

		if resp.Offset == "" {
			return records, nil
		}
		if seen[resp.Offset] {
			log.Printf("❌ Airtable: offset %q repetido na página %d, paginação interrompida", resp.Offset, page)
			return records, fmt.Errorf("airtable list: offset %q repetido", resp.Offset)
		}
		seen[resp.Offset] = true
		offset = resp.Offset
	}
}

// GetRecord lê um registro pelo ID (usado na tabela de instaladores).
func (c *Client) GetRecord(ctx context.Context, id string) (*RawRecord, error) {
	var raw RawRecord
	if err := c.getJSON(ctx, "get", c.baseURL+"/"+url.PathEscape(id), &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// PatchRecord applies fields to one record. Only HTTP 200 counts as applied.
func (c *Client) PatchRecord(ctx context.Context, id string, fields map[string]any) error {
	body, err := json.Marshal(patchRequest{Fields: fields})
	if err != nil {
		return fmt.Errorf("erro ao marshal patch airtable: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/"+url.PathEscape(id), bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro request airtable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Op: "patch", Status: resp.StatusCode, Body: readBody(resp.Body)}
	}
	return nil
}

// Ping lê no máximo um registro para validar credenciais e tabela.
func (c *Client) Ping(ctx context.Context) error {
	var resp listResponse
	return c.getJSON(ctx, "ping", c.baseURL+"?maxRecords=1", &resp)
}

func (c *Client) getJSON(ctx context.Context, op, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro request airtable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Op: op, Status: resp.StatusCode, Body: readBody(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("erro decode airtable: %w", err)
	}
	return nil
}

// readBody devolve o corpo de uma resposta de erro; falha de leitura vira texto
func readBody(r io.Reader) string {
	body, err := io.ReadAll(r)
	if err != nil {
		log.Printf("⚠️ Airtable: erro ao ler corpo da resposta: %v", err)
		return fmt.Sprintf("%s (leitura incompleta: %v)", body, err)
	}
	return string(body)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

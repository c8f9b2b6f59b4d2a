package sellsy

import (
	"encoding/json"
	"fmt"
)

// TemplateVars são substituídas no template de email do Sellsy
type TemplateVars map[string]string

// Chaves usadas no template "Demande de mandat API"
const (
	VarInstaller     = "Installateur"
	VarSignatureDate = "DateSignature"
	VarMandateLink   = "LienMandat"
)

type apiResponse struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
	Error    json.RawMessage `json:"error"`
}

type clientGetOneParams struct {
	ClientID any `json:"clientid"`
}

type clientGetOneResponse struct {
	Corporation struct {
		Email  string `json:"email"`
		Name   string `json:"name"`
		Mobile string `json:"mobile"`
	} `json:"corporation"`
	Contact struct {
		Forename string `json:"forename"`
		Name     string `json:"name"`
	} `json:"contact"`
}

type sendOneParams struct {
	LinkedType string       `json:"linkedtype"`
	LinkedID   any          `json:"linkedid"`
	Emails     []string     `json:"emails"`
	MailID     string       `json:"mailid"`
	UserIDFrom string       `json:"useridfrom"`
	CustomVars TemplateVars `json:"customvars"`
}

type paymentModeParams struct {
	ClientID  any             `json:"clientid"`
	Label     string          `json:"label"`
	Ident     string          `json:"ident"`
	Type      string          `json:"type"`
	Active    string          `json:"active"`
	DefaultPm string          `json:"defaultPm"`
	Data      paymentModeData `json:"data"`
}

type paymentModeData struct {
	BankName        string `json:"bankName"`
	MandateRef      string `json:"mandateRef"`
	MandateSignDate string `json:"mandateSignDate"`
	Scheme          string `json:"scheme"`
}

type getListParams struct {
	Pagination struct {
		NbPerPage int `json:"nbperpage"`
	} `json:"pagination"`
}

// APIError is a call Sellsy answered but did not accept, either with a non
// 200 status or with status != "success".
type APIError struct {
	Method     string
	HTTPStatus int
	Detail     string
}

func (e *APIError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("sellsy %s: http %d - %s", e.Method, e.HTTPStatus, e.Detail)
	}
	return fmt.Sprintf("sellsy %s: %s", e.Method, e.Detail)
}

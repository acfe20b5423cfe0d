package patient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"pharmasales/m/domain"
	"pharmasales/m/internal/config"
	"pharmasales/m/internal/gateway"
)

// Client talks to the patient service.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(cfg config.Upstream) *Client {
	return &Client{baseURL: cfg.BaseURL, http: gateway.NewHTTPClient(cfg)}
}

type pacienteResponse struct {
	ID              int64           `json:"id"`
	Nombre          string          `json:"nombre"`
	Apellido        string          `json:"apellido"`
	RUT             string          `json:"rut"`
	FechaNacimiento json.RawMessage `json:"fechaNacimiento"`
	Direccion       string          `json:"direccion"`
	Telefono        string          `json:"telefono"`
}

type beneficiosResponse struct {
	EsBeneficiario      bool            `json:"esBeneficiario"`
	TipoBeneficio       string          `json:"tipoBeneficio"`
	DescuentoPorcentaje json.RawMessage `json:"descuentoPorcentaje"`
}

// GetPatientByRut returns domain.ErrPatientNotFound on 404 and wraps
// domain.ErrUpstreamUnavailable when the service cannot be reached.
func (c *Client) GetPatientByRut(ctx context.Context, rut string) (*domain.Patient, error) {
	var resp pacienteResponse
	_, err := gateway.Do(ctx, c.http, http.MethodGet, c.baseURL+"/api/pacientes/"+url.PathEscape(rut), nil, &resp)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, fmt.Errorf("rut %s: %w", rut, domain.ErrPatientNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get patient %s: %w", rut, err)
	}

	p := &domain.Patient{
		ID:         resp.ID,
		RUT:        resp.RUT,
		GivenName:  resp.Nombre,
		FamilyName: resp.Apellido,
		BirthDate:  dateString(resp.FechaNacimiento),
		Address:    resp.Direccion,
		Phone:      resp.Telefono,
	}
	if p.RUT == "" {
		p.RUT = rut
	}
	return p, nil
}

// GetBenefits returns the raw benefits payload. A percentage that is absent
// or not numeric is left nil.
func (c *Client) GetBenefits(ctx context.Context, rut string) (*domain.BenefitData, error) {
	var resp beneficiosResponse
	_, err := gateway.Do(ctx, c.http, http.MethodGet, c.baseURL+"/api/pacientes/"+url.PathEscape(rut)+"/beneficios", nil, &resp)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, fmt.Errorf("benefits for %s: %w", rut, domain.ErrPatientNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get benefits %s: %w", rut, err)
	}

	return &domain.BenefitData{
		IsBeneficiary:   resp.EsBeneficiario,
		BenefitType:     resp.TipoBeneficio,
		DiscountPercent: percentage(resp.DescuentoPorcentaje),
	}, nil
}

// IsAvailable probes the liveness endpoint.
func (c *Client) IsAvailable(ctx context.Context) bool {
	status, err := gateway.Do(ctx, c.http, http.MethodGet, c.baseURL+"/api/hola", nil, nil)
	return err == nil && status == http.StatusOK
}

func percentage(raw json.RawMessage) *decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	// JSON numbers only; strings count as absent even when they parse.
	if len(raw) == 0 || raw[0] == 'n' || raw[0] == '"' {
		return nil
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return nil
	}
	return &d
}

func dateString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

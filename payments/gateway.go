// Package payments charges bookings through an external payment provider.
package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"lablinc/services/logger"

	"github.com/goccy/go-json"
	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

const ProviderMercadoPago = "mercadopago"

var (
	ErrMissingAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
	ErrNotConfigured      = errors.New("mercado pago gateway not configured")
)

// Charge is one request to collect money for a booking.
type Charge struct {
	Reference   string
	Amount      int64
	Currency    string
	Description string
	Method      string
	PayerEmail  string
}

// Result is the provider's answer to a Charge.
type Result struct {
	Provider          string
	ProviderPaymentID string
	Status            string
	Raw               json.RawMessage
}

// Approved reports whether the provider accepted the charge.
func (r Result) Approved() bool {
	return r.Status == "approved"
}

type Gateway interface {
	CreatePayment(ctx context.Context, charge Charge) (Result, error)
}

type MercadoPagoGateway struct {
	client   payment.Client
	mockMode bool
	logger   logger.Logger
	now      func() time.Time
}

// NewMercadoPagoGateway returns a gateway that approves every charge locally
// when mock is set.
func NewMercadoPagoGateway(accessToken string, mock bool, log logger.Logger) (*MercadoPagoGateway, error) {
	if mock {
		log.Info("[payment][gateway] mock mode enabled")
		return &MercadoPagoGateway{mockMode: true, logger: log, now: time.Now}, nil
	}
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercado pago config: %w", err)
	}
	log.Info("[payment][gateway] Mercado Pago client initialized")
	return &MercadoPagoGateway{client: payment.NewClient(cfg), logger: log, now: time.Now}, nil
}

func requestPayload(charge Charge) (json.RawMessage, error) {
	body := map[string]any{
		"transaction_amount": float64(charge.Amount),
		"description":        charge.Description,
		"external_reference": charge.Reference,
		"payment_method_id":  charge.Method,
	}
	if charge.PayerEmail != "" {
		body["payer"] = map[string]any{"email": charge.PayerEmail}
	}
	return json.Marshal(body)
}

func (g *MercadoPagoGateway) CreatePayment(ctx context.Context, charge Charge) (Result, error) {
	payload, err := requestPayload(charge)
	if err != nil {
		return Result{}, err
	}

	if g != nil && g.mockMode {
		return g.mockCreate(charge, payload)
	}
	if g == nil || g.client == nil {
		return Result{}, ErrNotConfigured
	}

	var req payment.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return Result{}, err
	}

	resp, err := g.client.Create(ctx, req)
	if err != nil {
		g.logger.Error("[payment][gateway] create failed reference=%s err=%v", charge.Reference, err)
		return Result{}, err
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return Result{}, err
	}
	g.logger.Info("[payment][gateway] create success provider_payment_id=%d provider_status=%s", resp.ID, resp.Status)

	return Result{
		Provider:          ProviderMercadoPago,
		ProviderPaymentID: fmt.Sprintf("%d", resp.ID),
		Status:            resp.Status,
		Raw:               raw,
	}, nil
}

func (g *MercadoPagoGateway) mockCreate(charge Charge, payload json.RawMessage) (Result, error) {
	resp := map[string]any{}
	if err := json.Unmarshal(payload, &resp); err != nil {
		resp = map[string]any{"request_payload_raw": string(payload)}
	}

	now := g.now().UTC()
	id := strconv.FormatInt(now.UnixNano(), 10)
	resp["id"] = id
	resp["status"] = "approved"
	resp["status_detail"] = "accredited"
	resp["date_created"] = now.Format(time.RFC3339Nano)
	resp["date_approved"] = now.Format(time.RFC3339Nano)

	raw, err := json.Marshal(resp)
	if err != nil {
		return Result{}, err
	}
	g.logger.Info("[payment][gateway] mock create success reference=%s provider_payment_id=%s", charge.Reference, id)
	return Result{
		Provider:          ProviderMercadoPago,
		ProviderPaymentID: id,
		Status:            "approved",
		Raw:               raw,
	}, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"

	"github.com/bengalmatrimony/backend/internal/models"
)

// PaymentIntent is the provider-side view of a charge.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
	Email        string
	BiodataID    int
}

type PaymentProvider interface {
	CreateIntent(ctx context.Context, amount int64, currency, email string, biodataID int) (*PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

const (
	metaEmail     = "email"
	metaBiodataID = "biodataId"
)

// StripeProvider creates and reads PaymentIntents through the Stripe API.
type StripeProvider struct {
	intents *paymentintent.Client
}

func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{
		intents: &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amount int64, currency, email string, biodataID int) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:                  stripe.Int64(amount),
		Currency:                stripe.String(currency),
		ReceiptEmail:            stripe.String(email),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{Enabled: stripe.Bool(true)},
	}
	params.Context = ctx
	params.AddMetadata(metaEmail, email)
	params.AddMetadata(metaBiodataID, strconv.Itoa(biodataID))

	pi, err := p.intents.New(params)
	if err != nil {
		return nil, stripeErr(err)
	}
	return intentFromStripe(pi), nil
}

func (p *StripeProvider) GetIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := p.intents.Get(id, params)
	if err != nil {
		return nil, stripeErr(err)
	}
	return intentFromStripe(pi), nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *PaymentIntent {
	out := &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Email:        pi.Metadata[metaEmail],
	}
	if id, err := strconv.Atoi(pi.Metadata[metaBiodataID]); err == nil {
		out.BiodataID = id
	}
	return out
}

func stripeErr(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.Code == stripe.ErrorCodeResourceMissing {
		return fmt.Errorf("%w: %s", ErrPaymentNotConfirmed, se.Msg)
	}
	return fmt.Errorf("%w: %w", ErrPaymentProvider, err)
}

// DefaultUnlockPrice is the contact unlock price in minor units.
const DefaultUnlockPrice int64 = 500

// Checkout opens payment intents and records confirmed charges in the
// ledger. Nothing is written unless the provider reports success. The
// price is held server-side; clients cannot choose it.
type Checkout struct {
	provider PaymentProvider
	ledger   PaymentLedger
	currency string
	price    int64
	now      func() time.Time
}

func NewCheckout(provider PaymentProvider, ledger PaymentLedger, currency string, price int64) *Checkout {
	if currency == "" {
		currency = "usd"
	}
	if price <= 0 {
		price = DefaultUnlockPrice
	}
	return &Checkout{provider: provider, ledger: ledger, currency: currency, price: price, now: time.Now}
}

func (c *Checkout) Price() int64 { return c.price }

// CreateIntent always charges the unlock price. A client amount, when sent,
// must equal it.
func (c *Checkout) CreateIntent(ctx context.Context, email string, req *models.CreatePaymentIntentRequest) (*PaymentIntent, error) {
	if req.AmountInCents != 0 && req.AmountInCents != c.price {
		return nil, fmt.Errorf("%w: amount %d != price %d", ErrPaymentMismatch, req.AmountInCents, c.price)
	}
	return c.provider.CreateIntent(ctx, c.price, c.currency, NormalizeEmail(email), req.BiodataID)
}

// Confirm re-reads the intent from the provider and records it when it
// succeeded for this payer and biodata.
func (c *Checkout) Confirm(ctx context.Context, email string, req *models.RecordPaymentRequest) (*models.Payment, error) {
	email = NormalizeEmail(email)

	pi, err := c.provider.GetIntent(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if pi.Status != models.PaymentStatusSucceeded {
		return nil, fmt.Errorf("%w: status %s", ErrPaymentNotConfirmed, pi.Status)
	}
	if pi.Amount < c.price {
		return nil, fmt.Errorf("%w: amount %d below price %d", ErrPaymentMismatch, pi.Amount, c.price)
	}
	if req.Amount > 0 && req.Amount != pi.Amount {
		return nil, fmt.Errorf("%w: amount %d != %d", ErrPaymentMismatch, req.Amount, pi.Amount)
	}
	if pi.Email != "" && NormalizeEmail(pi.Email) != email {
		return nil, fmt.Errorf("%w: payer", ErrPaymentMismatch)
	}
	if pi.BiodataID != 0 && pi.BiodataID != req.BiodataID {
		return nil, fmt.Errorf("%w: biodata %d != %d", ErrPaymentMismatch, req.BiodataID, pi.BiodataID)
	}

	p, err := c.ledger.Record(ctx, &models.Payment{
		Name:      req.Name,
		Email:     email,
		BiodataID: req.BiodataID,
		Amount:    pi.Amount,
		Currency:  pi.Currency,
		PaymentID: pi.ID,
		Status:    pi.Status,
		Date:      c.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Payment] recorded email=%s biodataId=%d paymentId=%s amount=%d", p.Email, p.BiodataID, p.PaymentID, p.Amount)
	return p, nil
}

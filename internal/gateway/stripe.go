package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"

	"github.com/campushub/events-api/internal/config"
	"github.com/campushub/events-api/internal/domain"
)

const requestTimeout = 10 * time.Second

// StripeClient retrieves payment intents from Stripe. The gateway's
// reported status and amount are authoritative; a timed-out retrieval
// fails closed so no registration commits on an unverified payment.
type StripeClient struct {
	api *client.API
}

func NewStripeClient(conf *config.StripeConfig) *StripeClient {
	backends := stripe.NewBackends(&http.Client{Timeout: requestTimeout})

	return &StripeClient{
		api: client.New(conf.SecretKey, backends),
	}
}

func (c *StripeClient) Retrieve(ctx context.Context, paymentRef string) (domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	}

	intent, err := c.api.PaymentIntents.Get(paymentRef, params)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("stripe paymentintent.Get -> %w", err)
	}

	return domain.PaymentIntent{
		ID:     intent.ID,
		Status: string(intent.Status),
		Amount: intent.Amount,
	}, nil
}

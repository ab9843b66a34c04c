package payments

import (
	"context"
	"fmt"
	"math"

	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeProcessor charges executions through Stripe PaymentIntents.
type StripeProcessor struct {
	secretKey string
}

func NewStripeProcessor(secretKey string) *StripeProcessor {
	return &StripeProcessor{secretKey: secretKey}
}

func (p *StripeProcessor) Charge(ctx context.Context, params domain.ChargeParams) (domain.ChargeResult, error) {
	stripe.Key = p.secretKey

	// Stripe expects the amount in the currency's smallest unit.
	amountCents := int64(math.Round(params.Amount * 100))

	intentParams := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(params.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String(string(stripe.PaymentIntentAutomaticPaymentMethodsAllowRedirectsNever)),
		},
		Confirm: stripe.Bool(true),
	}

	if params.Description != "" {
		intentParams.Description = stripe.String(params.Description)
	}
	if params.UserID != "" {
		intentParams.AddMetadata("user_id", params.UserID)
	}
	if params.IdempotencyKey != "" {
		intentParams.SetIdempotencyKey(params.IdempotencyKey)
	}

	intent, err := paymentintent.New(intentParams)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.Type == stripe.ErrorTypeCard {
			// A declined card is an outcome, not a transport failure.
			return domain.ChargeResult{Succeeded: false}, nil
		}

		return domain.ChargeResult{}, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return domain.ChargeResult{
		PaymentID: intent.ID,
		Succeeded: intent.Status == stripe.PaymentIntentStatusSucceeded,
	}, nil
}

package scheduler

import (
	"context"
	"time"

	advertapp "github.com/agriconnect/backend/internal/application/advert"
	commsapp "github.com/agriconnect/backend/internal/application/comms"
	paymentapp "github.com/agriconnect/backend/internal/application/payment"
	subscriptionapp "github.com/agriconnect/backend/internal/application/subscription"
	tradeapp "github.com/agriconnect/backend/internal/application/trade"
	"github.com/agriconnect/backend/internal/infrastructure/config"
)

// otpRetention keeps expired codes around briefly for support lookups
const otpRetention = 24 * time.Hour

// deliveryPollAge is how long a message stays "sent" before its status
// is polled from the provider
const deliveryPollAge = 5 * time.Minute

// Services are the application services the maintenance jobs drive
type Services struct {
	OTP           *commsapp.OTPService
	Messages      *commsapp.MessageService
	Orders        *tradeapp.OrderService
	Escrow        *paymentapp.EscrowService
	Payments      *paymentapp.PaymentService
	Subscriptions *subscriptionapp.SubscriptionService
	Campaigns     *advertapp.CampaignService
}

// RegisterMaintenanceJobs binds the standard job set to the scheduler.
// Intervals come from configuration, a zero interval disables a job.
func RegisterMaintenanceJobs(s *Scheduler, cfg config.SchedulerConfig, svc Services) {
	limit := cfg.BatchLimit
	if limit <= 0 {
		limit = 100
	}

	s.Register("otp_cleanup", cfg.OTPCleanupInterval, func(ctx context.Context) error {
		_, err := svc.OTP.CleanupExpired(ctx, otpRetention)
		return err
	})

	s.Register("sms_delivery_poll", cfg.DeliveryInterval, func(ctx context.Context) error {
		_, err := svc.Messages.PollDeliveries(ctx, deliveryPollAge)
		return err
	})

	s.Register("order_expiry", cfg.OrderInterval, func(ctx context.Context) error {
		_, err := svc.Orders.ExpireStalePending(ctx)
		return err
	})

	s.Register("escrow_auto_release", cfg.EscrowInterval, func(ctx context.Context) error {
		_, err := svc.Escrow.AutoRelease(ctx, limit)
		return err
	})

	s.Register("webhook_retry", cfg.WebhookInterval, func(ctx context.Context) error {
		_, err := svc.Payments.RetryFailedWebhooks(ctx, limit)
		return err
	})

	s.Register("subscription_renewal", cfg.BillingInterval, func(ctx context.Context) error {
		if _, err := svc.Subscriptions.RenewDue(ctx, limit); err != nil {
			return err
		}
		_, err := svc.Subscriptions.ExpireLapsed(ctx, limit)
		return err
	})

	s.Register("campaign_completion", cfg.AdvertInterval, func(ctx context.Context) error {
		_, err := svc.Campaigns.CompleteEnded(ctx, limit)
		return err
	})
}

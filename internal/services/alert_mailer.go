package services

import (
	"context"
	"fmt"
	"vip-order-api/internal/config"
	"vip-order-api/pkg/logging"

	brevo "github.com/getbrevo/brevo-go/lib"
)

// AlertMailer sends operational alert emails through Brevo. Used for
// conditions that need human follow-up, like a paid order whose VIP
// grant failed.
type AlertMailer struct {
	client    *brevo.APIClient
	fromEmail string
	toEmail   string
	service   string
}

// NewAlertMailer creates a new alert mailer instance.
func NewAlertMailer() *AlertMailer {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", config.AppConfig.BrevoAPIKey)

	return &AlertMailer{
		client:    brevo.NewAPIClient(cfg),
		fromEmail: config.AppConfig.BrevoFromEmail,
		toEmail:   config.AppConfig.AlertEmail,
		service:   config.AppConfig.ServiceName,
	}
}

// Enabled reports whether alerting is configured.
func (m *AlertMailer) Enabled() bool {
	return config.AppConfig.BrevoAPIKey != "" && m.fromEmail != "" && m.toEmail != ""
}

// SendEntitlementAlert notifies operators that a paid order could not
// be granted its VIP entitlement. Best effort: failures are logged and
// never propagated to the payment callback path.
func (m *AlertMailer) SendEntitlementAlert(ctx context.Context, outTradeNo string, userID uint, cause string) {
	if !m.Enabled() {
		return
	}

	subject := fmt.Sprintf("[%s] 已支付订单发放会员失败", m.service)
	text := fmt.Sprintf("订单号: %s\n用户ID: %d\n原因: %s\n\n订单已确认支付但会员未发放，请人工核查补发。",
		outTradeNo, userID, cause)

	email := brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  m.service,
			Email: m.fromEmail,
		},
		To: []brevo.SendSmtpEmailTo{
			{Email: m.toEmail},
		},
		Subject:     subject,
		TextContent: text,
	}

	if _, _, err := m.client.TransactionalEmailsApi.SendTransacEmail(ctx, email); err != nil {
		logging.Errorf("Failed to send entitlement alert for order %s: %v", outTradeNo, err)
		return
	}
	logging.Infof("Entitlement alert sent for order %s", outTradeNo)
}

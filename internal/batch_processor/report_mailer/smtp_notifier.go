package report_mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/deducta-loan-ledger/internal/config"
	"github.com/deducta-loan-ledger/internal/domain/report"
)

// Notifier delivers a batch report to the operator mailing list
type Notifier interface {
	SendReport(ctx context.Context, r *report.Report) error
}

// SMTPNotifier implements Notifier over a plain SMTP relay
type SMTPNotifier struct {
	addr       string
	from       string
	recipients []string
	logger     *slog.Logger
}

func NewSMTPNotifier(cfg *config.SMTPConfig, logger *slog.Logger) *SMTPNotifier {
	var recipients []string
	for _, r := range strings.Split(cfg.Recipients, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return &SMTPNotifier{
		addr:       fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from:       cfg.From,
		recipients: recipients,
		logger:     logger,
	}
}

// SendReport mails the report summary with its CSV attachment.
func (n *SMTPNotifier) SendReport(_ context.Context, r *report.Report) error {
	if len(n.recipients) == 0 {
		n.logger.Warn("No report recipients configured, skipping delivery", "period", r.Period)
		return nil
	}

	msg := n.buildMessage(r)
	if err := smtp.SendMail(n.addr, nil, n.from, n.recipients, msg); err != nil {
		return fmt.Errorf("failed to send report for period %s: %w", r.Period, err)
	}
	return nil
}

func (n *SMTPNotifier) buildMessage(r *report.Report) []byte {
	const boundary = "deducta-report-boundary"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(n.recipients, ", "))
	fmt.Fprintf(&b, "Subject: Deduction batch report for %s\r\n", r.Period)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&b, "Deduction batch for period %s has completed.\r\n\r\n", r.Period)
	fmt.Fprintf(&b, "Customers processed: %d\r\n", r.CustomerCount)
	fmt.Fprintf(&b, "Total received (minor units): %d\r\n", r.TotalReceived)
	fmt.Fprintf(&b, "Total repaid (minor units): %d\r\n", r.TotalRepaid)
	fmt.Fprintf(&b, "Penalty accrued (minor units): %d\r\n", r.TotalPenalty)
	fmt.Fprintf(&b, "Unallocated leftover (minor units): %d\r\n", r.TotalLeftover)
	fmt.Fprintf(&b, "Loans with no payment: %d\r\n\r\n", r.FailedLoans)

	if len(r.Attachment) > 0 {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: text/csv\r\n")
		b.WriteString("Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n\r\n", reportFilename(r.Period))
		b.WriteString(base64.StdEncoding.EncodeToString(r.Attachment))
		b.WriteString("\r\n")
	}

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

func reportFilename(period string) string {
	return "batch-report-" + strings.ToLower(strings.ReplaceAll(period, " ", "-")) + ".csv"
}

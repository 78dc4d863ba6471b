package notification

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/notification"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
)

const (
	msgPayrollGeneratedTitle    = "payroll_generated_title"
	msgPayrollGeneratedMessage  = "payroll_generated_message"
	msgPayrollGeneratedNegative = "payroll_generated_negative_message"
)

// PayrollNotifier tells an employee their payroll record was generated.
type PayrollNotifier struct {
	service notification.Service
	locale  string
}

func NewPayrollNotifier(service notification.Service, locale string) payroll.Notifier {
	return &PayrollNotifier{service: service, locale: locale}
}

func (n *PayrollNotifier) PayrollGenerated(ctx context.Context, record payroll.PayrollRecord) error {
	messageID := msgPayrollGeneratedMessage
	if record.HasNegativeNet() {
		messageID = msgPayrollGeneratedNegative
	}

	var sender *string
	if record.GeneratedBy != "" {
		sender = &record.GeneratedBy
	}

	return n.service.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: record.EmployeeID,
		SenderID:    sender,
		Type:        notification.TypePayrollGenerated,
		TitleID:     msgPayrollGeneratedTitle,
		MessageID:   messageID,
		TemplateData: map[string]any{
			"Period":    record.Period.String(),
			"NetSalary": record.NetSalary.StringFixed(0),
		},
		Data: map[string]any{
			"payroll_record_id": record.ID,
			"period":            record.Period.String(),
			"net_salary":        record.NetSalary.String(),
		},
		Locale: n.locale,
	})
}

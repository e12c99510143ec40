package whatsapp

import (
	"context"
	"fmt"
	"strings"

	visitorsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/visitors"
	"github.com/cg-naveen/sukha-pms-new-sub000/pkg/logger"
)

type Sender interface {
	SendText(ctx context.Context, phone, message string) (string, error)
}

// VisitorNotifier tells visitors the outcome of their registration.
type VisitorNotifier struct {
	sender       Sender
	propertyName string
	log          logger.Logger
}

func NewVisitorNotifier(sender Sender, propertyName string, log logger.Logger) *VisitorNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &VisitorNotifier{sender: sender, propertyName: strings.TrimSpace(propertyName), log: log}
}

func (n *VisitorNotifier) VisitorApproved(ctx context.Context, visitor visitorsdomain.Visitor) error {
	return n.send(ctx, visitor, "approved", ApprovalMessage(visitor, n.propertyName))
}

func (n *VisitorNotifier) VisitorRejected(ctx context.Context, visitor visitorsdomain.Visitor) error {
	return n.send(ctx, visitor, "rejected", RejectionMessage(visitor, n.propertyName))
}

func (n *VisitorNotifier) send(ctx context.Context, visitor visitorsdomain.Visitor, event, message string) error {
	id, err := n.sender.SendText(ctx, visitor.Phone, message)
	if err != nil {
		return err
	}
	n.log.Info("whatsapp: visitor notified", "event", event, "visitor_id", visitor.ID, "message_id", id)
	return nil
}

func ApprovalMessage(visitor visitorsdomain.Visitor, propertyName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s, your visit%s on %s", visitor.FullName, at(propertyName), visitor.VisitDate)
	if visitor.VisitTime != "" {
		fmt.Fprintf(&b, " at %s", visitor.VisitTime)
	}
	b.WriteString(" has been approved.")
	if visitor.QRCode != nil {
		fmt.Fprintf(&b, " Show this pass code at the gate: %s", *visitor.QRCode)
	}
	return b.String()
}

func RejectionMessage(visitor visitorsdomain.Visitor, propertyName string) string {
	return fmt.Sprintf("Hello %s, unfortunately your visit%s on %s could not be approved.", visitor.FullName, at(propertyName), visitor.VisitDate)
}

func at(propertyName string) string {
	if propertyName == "" {
		return ""
	}
	return " to " + propertyName
}

// LogNotifier stands in when no gateway is configured.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) VisitorApproved(_ context.Context, visitor visitorsdomain.Visitor) error {
	n.log.Info("whatsapp disabled: skipping approval message", "visitor_id", visitor.ID)
	return nil
}

func (n *LogNotifier) VisitorRejected(_ context.Context, visitor visitorsdomain.Visitor) error {
	n.log.Info("whatsapp disabled: skipping rejection message", "visitor_id", visitor.ID)
	return nil
}

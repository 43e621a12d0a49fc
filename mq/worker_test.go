package mq

import (
	"errors"
	"strings"
	"testing"

	"mjolnir/mailer"
	"mjolnir/models"

	"go.mongodb.org/mongo-driver/bson"
)

type fakeSender struct {
	sent []sentMail
	fail error
}

type sentMail struct {
	to, subject string
	attachments []mailer.Attachment
}

func (f *fakeSender) Send(to, subject, body string, attachments ...mailer.Attachment) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, attachments: attachments})
	return nil
}

type fakePoster struct {
	forwarded []string
	fail      error
}

func (f *fakePoster) Forward(order models.Order) error {
	if f.fail != nil {
		return f.fail
	}
	f.forwarded = append(f.forwarded, order.OrderID)
	return nil
}

func dispatchOrder() models.Order {
	return models.Order{
		OrderID:    "ord-42",
		UserID:     "u1",
		Items:      []models.OrderItem{{ProductID: "g1", Name: "Bass", UnitPrice: 500, Quantity: 1}},
		TotalPrice: 500,
		Status:     models.StatusProcessing,
	}
}

func TestDispatchSendsInvoiceAndForwards(t *testing.T) {
	sender := &fakeSender{}
	poster := &fakePoster{}
	w := &Worker{Mail: sender, Delivery: poster}

	if err := w.Dispatch(dispatchOrder(), "jane@example.com"); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(sender.sent))
	}
	mail := sender.sent[0]
	if mail.to != "jane@example.com" {
		t.Errorf("mail to = %q", mail.to)
	}
	if !strings.Contains(mail.subject, "ord-42") {
		t.Errorf("subject does not reference the order: %q", mail.subject)
	}
	if len(mail.attachments) != 1 || mail.attachments[0].Filename != "invoice-ord-42.pdf" {
		t.Errorf("attachments = %+v, want one invoice PDF", mail.attachments)
	}
	if len(mail.attachments) == 1 && len(mail.attachments[0].Content) == 0 {
		t.Error("attached PDF is empty")
	}

	if len(poster.forwarded) != 1 || poster.forwarded[0] != "ord-42" {
		t.Errorf("forwarded = %v, want [ord-42]", poster.forwarded)
	}
}

func TestDispatchWithoutEmailStillForwards(t *testing.T) {
	sender := &fakeSender{}
	poster := &fakePoster{}
	w := &Worker{Mail: sender, Delivery: poster}

	if err := w.Dispatch(dispatchOrder(), ""); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Error("mail sent without a recipient")
	}
	if len(poster.forwarded) != 1 {
		t.Error("delivery not forwarded")
	}
}

func TestDispatchJoinsFailures(t *testing.T) {
	mailErr := errors.New("smtp refused")
	webhookErr := errors.New("webhook 503")
	w := &Worker{
		Mail:     &fakeSender{fail: mailErr},
		Delivery: &fakePoster{fail: webhookErr},
	}

	err := w.Dispatch(dispatchOrder(), "jane@example.com")
	if err == nil {
		t.Fatal("Dispatch succeeded despite both side effects failing")
	}
	if !errors.Is(err, mailErr) {
		t.Errorf("joined error missing mail failure: %v", err)
	}
	if !errors.Is(err, webhookErr) {
		t.Errorf("joined error missing webhook failure: %v", err)
	}
}

func TestFailureUpdateBumpsAttempts(t *testing.T) {
	w := &Worker{MaxAttempts: 3}

	update := w.failureUpdate(models.OutboxEntry{EntryID: "e1", Attempts: 0}, errors.New("smtp down"))
	if got := update["$inc"].(bson.M)["attempts"]; got != 1 {
		t.Errorf("attempts increment = %v, want 1", got)
	}
	set := update["$set"].(bson.M)
	if set["lastError"] != "smtp down" {
		t.Errorf("lastError = %v, want the cause recorded", set["lastError"])
	}
	if _, parked := set["status"]; parked {
		t.Error("entry parked before reaching the attempt cap")
	}
}

func TestFailureUpdateParksAtCap(t *testing.T) {
	w := &Worker{MaxAttempts: 3}

	update := w.failureUpdate(models.OutboxEntry{EntryID: "e1", Attempts: 2}, errors.New("webhook 503"))
	if got := update["$set"].(bson.M)["status"]; got != models.OutboxFailed {
		t.Errorf("status = %v, want %q once attempts reach the cap", got, models.OutboxFailed)
	}
}

func TestDispatchMailFailureDoesNotBlockDelivery(t *testing.T) {
	poster := &fakePoster{}
	w := &Worker{Mail: &fakeSender{fail: errors.New("smtp down")}, Delivery: poster}

	if err := w.Dispatch(dispatchOrder(), "jane@example.com"); err == nil {
		t.Fatal("expected mail failure to surface")
	}
	if len(poster.forwarded) != 1 {
		t.Error("delivery skipped because mail failed")
	}
}

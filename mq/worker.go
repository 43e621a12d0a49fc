package mq

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mjolnir/db"
	"mjolnir/delivery"
	"mjolnir/invoices"
	"mjolnir/mailer"
	"mjolnir/models"
	"mjolnir/orders"
	"mjolnir/rdx"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Worker drains the order outbox: for each placed order it records the
// invoice, renders the PDF, emails it to the customer and notifies the
// delivery department. Every side effect is best-effort; a failed entry
// stays pending with its attempt count bumped until MaxAttempts, then is
// parked as failed. Nothing here ever touches the order itself.
type Worker struct {
	Mail        mailer.Sender
	Delivery    delivery.Poster
	MaxAttempts int
	Interval    time.Duration

	stop chan struct{}
}

func NewWorker() *Worker {
	return &Worker{
		Mail:        mailer.SMTPSender{},
		Delivery:    delivery.NewWebhookPoster(),
		MaxAttempts: 8,
		Interval:    30 * time.Second,
		stop:        make(chan struct{}),
	}
}

// Run blocks, draining on the Redis wake-up channel and on a ticker
// fallback that catches entries whose nudge was lost.
func (w *Worker) Run() {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	var redisCh <-chan string
	if rdx.Conn != nil {
		sub := rdx.Conn.Subscribe(context.Background(), orders.OutboxChannel)
		defer sub.Close()
		msgs := sub.Channel()
		ch := make(chan string, 16)
		go func() {
			for m := range msgs {
				select {
				case ch <- m.Payload:
				case <-w.stop:
					return
				}
			}
		}()
		redisCh = ch
	}

	log.Println("[dispatch] worker listening for order events")
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.Drain(context.Background())
		case <-redisCh:
			w.Drain(context.Background())
		}
	}
}

func (w *Worker) Stop() {
	close(w.stop)
}

// Drain processes every pending outbox entry still under the attempt cap.
func (w *Worker) Drain(ctx context.Context) {
	cursor, err := db.OutboxCollection.Find(ctx,
		bson.M{"status": models.OutboxPending, "attempts": bson.M{"$lt": w.MaxAttempts}},
		options.Find().SetSort(bson.M{"createdAt": 1}),
	)
	if err != nil {
		log.Println("[dispatch] outbox scan error:", err)
		return
	}
	defer cursor.Close(ctx)

	var entries []models.OutboxEntry
	if err := cursor.All(ctx, &entries); err != nil {
		log.Println("[dispatch] outbox read error:", err)
		return
	}

	for _, entry := range entries {
		if err := w.process(ctx, entry); err != nil {
			log.Printf("[dispatch] entry %s attempt %d failed: %v", entry.EntryID, entry.Attempts+1, err)
			w.recordFailure(ctx, entry, err)
			continue
		}
		w.markDone(ctx, entry)
	}
}

func (w *Worker) process(ctx context.Context, entry models.OutboxEntry) error {
	var order models.Order
	if err := db.OrderCollection.FindOne(ctx, bson.M{"orderId": entry.OrderID}).Decode(&order); err != nil {
		return fmt.Errorf("order lookup: %w", err)
	}
	if order.Status == models.StatusCancelled {
		// Too late to dispatch; drop the intent.
		return nil
	}

	if _, err := invoices.RecordSale(ctx, order); err != nil {
		return fmt.Errorf("invoice record: %w", err)
	}

	var user models.User
	email := ""
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": order.UserID}).Decode(&user); err == nil {
		email = user.Email
	}

	return w.Dispatch(order, email)
}

// Dispatch performs the outward side effects for one order. All three are
// attempted; failures are joined so a retry re-runs the lot (the invoice
// record is idempotent and a duplicate email is the accepted cost of an
// at-least-once dispatch).
func (w *Worker) Dispatch(order models.Order, email string) error {
	var errs []error

	if email != "" {
		pdfBytes, err := invoices.RenderPDF(order)
		if err != nil {
			errs = append(errs, fmt.Errorf("invoice render: %w", err))
		} else {
			err = w.Mail.Send(email,
				fmt.Sprintf("Your Invoice from Thor's Mighty Guitar Store - Order #%s", order.OrderID),
				"Thank you for your purchase! Your invoice is attached.",
				mailer.Attachment{Filename: "invoice-" + order.OrderID + ".pdf", Content: pdfBytes},
			)
			if err != nil {
				errs = append(errs, fmt.Errorf("invoice email: %w", err))
			}
		}
	}

	if err := w.Delivery.Forward(order); err != nil {
		errs = append(errs, fmt.Errorf("delivery webhook: %w", err))
	}

	return errors.Join(errs...)
}

// failureUpdate builds the outbox update for a failed attempt: bump the
// counter, record the cause, and park the entry once the cap is reached.
func (w *Worker) failureUpdate(entry models.OutboxEntry, cause error) bson.M {
	set := bson.M{"lastError": cause.Error(), "updatedAt": time.Now()}
	if entry.Attempts+1 >= w.MaxAttempts {
		set["status"] = models.OutboxFailed
	}
	return bson.M{"$inc": bson.M{"attempts": 1}, "$set": set}
}

func (w *Worker) recordFailure(ctx context.Context, entry models.OutboxEntry, cause error) {
	update := w.failureUpdate(entry, cause)
	if _, err := db.OutboxCollection.UpdateOne(ctx, bson.M{"entryId": entry.EntryID}, update); err != nil {
		log.Println("[dispatch] outbox update error:", err)
	}
}

func (w *Worker) markDone(ctx context.Context, entry models.OutboxEntry) {
	_, err := db.OutboxCollection.UpdateOne(ctx,
		bson.M{"entryId": entry.EntryID},
		bson.M{"$set": bson.M{"status": models.OutboxDone, "updatedAt": time.Now()}},
	)
	if err != nil {
		log.Println("[dispatch] outbox update error:", err)
	}
}

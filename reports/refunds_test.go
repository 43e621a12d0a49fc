package reports

import (
	"context"
	"errors"
	"testing"

	"mjolnir/models"
)

type fakeRefunds struct {
	requests map[string]*models.RefundRequest
}

func (f *fakeRefunds) resolve(refundID, status string) (models.RefundRequest, error) {
	req, ok := f.requests[refundID]
	if !ok || req.Status != "pending" {
		return models.RefundRequest{}, ErrRefundNotPending
	}
	req.Status = status
	return *req, nil
}

func (f *fakeRefunds) Approve(_ context.Context, refundID string) (models.RefundRequest, error) {
	return f.resolve(refundID, "approved")
}

func (f *fakeRefunds) Reject(_ context.Context, refundID string) (models.RefundRequest, error) {
	return f.resolve(refundID, "rejected")
}

type fakeStock struct {
	restored map[string]int
}

func (f *fakeStock) Release(_ context.Context, productID string, qty int) error {
	f.restored[productID] += qty
	return nil
}

type fakeInvoiceMarker struct {
	refunded []string
}

func (f *fakeInvoiceMarker) MarkRefunded(_ context.Context, orderID string) error {
	f.refunded = append(f.refunded, orderID)
	return nil
}

type passthroughTxn struct{}

func (passthroughTxn) Run(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func testApprover(requests map[string]*models.RefundRequest) (*Approver, *fakeStock, *fakeInvoiceMarker) {
	stock := &fakeStock{restored: map[string]int{}}
	invoices := &fakeInvoiceMarker{}
	approver := &Approver{
		Refunds:  &fakeRefunds{requests: requests},
		Products: stock,
		Invoices: invoices,
		Txn:      passthroughTxn{},
	}
	return approver, stock, invoices
}

func pendingRequest() *models.RefundRequest {
	return &models.RefundRequest{
		RefundID:  "ref-1",
		OrderID:   "ord-1",
		ProductID: "g1",
		Customer:  "u1",
		Status:    "pending",
	}
}

func TestApproveRestoresOneUnit(t *testing.T) {
	req := pendingRequest()
	approver, stock, invoices := testApprover(map[string]*models.RefundRequest{"ref-1": req})

	refund, err := approver.Approve(context.Background(), "ref-1")
	if err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	if refund.Status != "approved" {
		t.Errorf("status = %q, want approved", refund.Status)
	}
	if stock.restored["g1"] != 1 {
		t.Errorf("restored %d units of g1, want 1", stock.restored["g1"])
	}
	if len(invoices.refunded) != 1 || invoices.refunded[0] != "ord-1" {
		t.Errorf("refunded invoices = %v, want [ord-1]", invoices.refunded)
	}
}

func TestApproveTwiceRestoresOnce(t *testing.T) {
	req := pendingRequest()
	approver, stock, _ := testApprover(map[string]*models.RefundRequest{"ref-1": req})

	if _, err := approver.Approve(context.Background(), "ref-1"); err != nil {
		t.Fatalf("first approval: %v", err)
	}
	if _, err := approver.Approve(context.Background(), "ref-1"); !errors.Is(err, ErrRefundNotPending) {
		t.Fatalf("second approval err = %v, want ErrRefundNotPending", err)
	}
	if stock.restored["g1"] != 1 {
		t.Errorf("restored %d units, want exactly 1", stock.restored["g1"])
	}
}

func TestApproveUnknownRequest(t *testing.T) {
	approver, stock, invoices := testApprover(map[string]*models.RefundRequest{})

	if _, err := approver.Approve(context.Background(), "missing"); !errors.Is(err, ErrRefundNotPending) {
		t.Fatalf("err = %v, want ErrRefundNotPending", err)
	}
	if len(stock.restored) != 0 || len(invoices.refunded) != 0 {
		t.Error("side effects ran for an unknown request")
	}
}

package orders

import (
	"context"
	"testing"

	"homedish/apperr"
	"homedish/models"
	"homedish/utils"
)

func TestCreateComputesTotalFromMeal(t *testing.T) {
	svc, repo := newTestService()
	clientPrice := 1.0

	o, err := svc.Create(context.Background(), "eater@x.io", CreateRequest{
		FoodID:    "meal-1",
		Quantity:  3,
		UserEmail: "Eater@x.io",
		Price:     &clientPrice,
	})
	if err != nil {
		t.Fatal(err)
	}
	if o.Price != 10 || o.TotalPrice != 30 {
		t.Fatalf("price=%v total=%v, want 10 and 30", o.Price, o.TotalPrice)
	}
	if o.OrderStatus != models.OrderPending || o.PaymentStatus != models.PaymentPending {
		t.Fatalf("statuses = %s/%s", o.OrderStatus, o.PaymentStatus)
	}
	if o.ChefEmail != "chef@x.io" || o.ChefID != "chef-1000" || o.MealName != "Khichdi" {
		t.Fatalf("chef fields = %+v", o)
	}
	if _, ok := repo.orders[o.ID]; !ok {
		t.Fatal("order not stored")
	}
}

func TestCreateIsCustomerOnly(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		email string
		want  apperr.Kind
	}{
		{"chef@x.io", apperr.KindForbidden},
		{"cook@x.io", apperr.KindForbidden},
		{"admin@x.io", apperr.KindForbidden},
		{"ghost@x.io", apperr.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			req := CreateRequest{FoodID: "meal-1", Quantity: 1, UserEmail: tc.email}
			if _, err := svc.Create(context.Background(), tc.email, req); apperr.KindOf(err) != tc.want {
				t.Fatalf("err = %v, want %s", err, tc.want)
			}
		})
	}

	req := CreateRequest{FoodID: "meal-1", Quantity: 1, UserEmail: "hopeful@x.io"}
	if _, err := svc.Create(context.Background(), "hopeful@x.io", req); err != nil {
		t.Fatalf("pending applicant should still order: %v", err)
	}
}

func TestCreateRejects(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name string
		req  CreateRequest
		want apperr.Kind
	}{
		{"other user", CreateRequest{FoodID: "meal-1", Quantity: 1, UserEmail: "victim@x.io"}, apperr.KindForbidden},
		{"zero quantity", CreateRequest{FoodID: "meal-1", Quantity: 0, UserEmail: "eater@x.io"}, apperr.KindValidation},
		{"no food", CreateRequest{Quantity: 1, UserEmail: "eater@x.io"}, apperr.KindValidation},
		{"unknown meal", CreateRequest{FoodID: "meal-9", Quantity: 1, UserEmail: "eater@x.io"}, apperr.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), "eater@x.io", tc.req); apperr.KindOf(err) != tc.want {
				t.Fatalf("err = %v, want %s", err, tc.want)
			}
		})
	}
}

func TestAcceptPayDeliver(t *testing.T) {
	svc, _ := newTestService(pendingOrder("o1"))
	ctx := context.Background()

	if _, err := svc.Deliver(ctx, "chef@x.io", "o1"); apperr.KindOf(err) != apperr.KindInvalidState {
		t.Fatalf("deliver pending err = %v", err)
	}
	if _, err := svc.MarkPaid(ctx, "o1", "eater@x.io", "pi_1"); apperr.KindOf(err) != apperr.KindInvalidState {
		t.Fatalf("pay pending err = %v", err)
	}

	o, err := svc.Accept(ctx, "chef-1000", "o1")
	if err != nil {
		t.Fatal(err)
	}
	if o.OrderStatus != models.OrderAccepted || o.AcceptedAt == nil {
		t.Fatalf("after accept: %+v", o)
	}

	if _, err := svc.Deliver(ctx, "chef@x.io", "o1"); apperr.KindOf(err) != apperr.KindInvalidState {
		t.Fatalf("deliver unpaid err = %v", err)
	}

	o, err = svc.MarkPaid(ctx, "o1", "eater@x.io", "pi_1")
	if err != nil {
		t.Fatal(err)
	}
	if !o.Paid() || o.PaidAt == nil || o.TransactionID != "pi_1" {
		t.Fatalf("after pay: %+v", o)
	}
	if _, err := svc.MarkPaid(ctx, "o1", "eater@x.io", "pi_1"); apperr.KindOf(err) != apperr.KindInvalidState {
		t.Fatalf("second pay err = %v", err)
	}

	if _, err := svc.Deliver(ctx, "other-chef@x.io", "o1"); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("deliver by other chef err = %v", err)
	}

	o, err = svc.Deliver(ctx, "chef@x.io", "o1")
	if err != nil {
		t.Fatal(err)
	}
	if o.OrderStatus != models.OrderDelivered || o.DeliveredAt == nil {
		t.Fatalf("after deliver: %+v", o)
	}

	if _, err := svc.Deliver(ctx, "chef@x.io", "o1"); apperr.KindOf(err) != apperr.KindInvalidState {
		t.Fatalf("repeat deliver err = %v, want InvalidState", err)
	}
}

func TestAcceptAndCancelArePendingOnly(t *testing.T) {
	svc, _ := newTestService(pendingOrder("o1"), pendingOrder("o2"))
	ctx := context.Background()

	if _, err := svc.Accept(ctx, "chef-9999", "o1"); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("accept by other chef err = %v", err)
	}
	if _, err := svc.Accept(ctx, "chef-1000", "o1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Accept(ctx, "chef-1000", "o1"); apperr.KindOf(err) != apperr.KindInvalidState {
		t.Fatalf("repeat accept err = %v", err)
	}
	if _, err := svc.Cancel(ctx, "chef-1000", "o1"); apperr.KindOf(err) != apperr.KindInvalidState {
		t.Fatalf("cancel accepted err = %v", err)
	}

	o, err := svc.Cancel(ctx, "chef-1000", "o2")
	if err != nil {
		t.Fatal(err)
	}
	if o.OrderStatus != models.OrderCancelled || o.CancelledAt == nil {
		t.Fatalf("after cancel: %+v", o)
	}
	if _, err := svc.Accept(ctx, "chef-1000", "o2"); apperr.KindOf(err) != apperr.KindInvalidState {
		t.Fatalf("accept cancelled err = %v", err)
	}
	if _, err := svc.Accept(ctx, "chef-1000", "missing"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("missing err = %v", err)
	}
}

func TestMarkPaidOwnership(t *testing.T) {
	o := pendingOrder("o1")
	o.OrderStatus = models.OrderAccepted
	svc, _ := newTestService(o)

	if _, err := svc.MarkPaid(context.Background(), "o1", "stranger@x.io", "pi_1"); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("err = %v", err)
	}
	// Verified provider events carry no payer constraint.
	if _, err := svc.MarkPaid(context.Background(), "o1", "", "pi_1"); err != nil {
		t.Fatal(err)
	}
}

func TestGetVisibility(t *testing.T) {
	svc, _ := newTestService(pendingOrder("o1"))
	ctx := context.Background()

	for _, email := range []string{"eater@x.io", "chef@x.io", "admin@x.io"} {
		if _, err := svc.Get(ctx, "o1", email); err != nil {
			t.Fatalf("%s: %v", email, err)
		}
	}
	if _, err := svc.Get(ctx, "o1", "stranger@x.io"); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("stranger err = %v", err)
	}
}

func TestSummaryIncludesEveryStatus(t *testing.T) {
	svc, _ := newTestService(pendingOrder("o1"), pendingOrder("o2"))
	counts, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts[models.OrderPending] != 2 || len(counts) != 4 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService()
	_, _, err := svc.ListForCustomer(context.Background(), "eater@x.io", "lost", utils.Page{Page: 1, Limit: 10})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("err = %v", err)
	}
}

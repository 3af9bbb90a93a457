package accounts

import (
	"testing"

	"homedish/apperr"
	"homedish/models"
)

var allRoles = []models.Role{
	models.RoleUser, models.RoleChefPending, models.RoleChef, models.RoleAdminPending, models.RoleAdmin,
}

var allEvents = []Event{
	EventRequestChef, EventApproveChef, EventRejectChef,
	EventRequestAdmin, EventApproveAdmin, EventRejectAdmin, EventDemoteChef,
}

func TestTransitionTable(t *testing.T) {
	allowed := map[models.Role]map[Event]models.Role{
		models.RoleUser:         {EventRequestChef: models.RoleChefPending, EventRequestAdmin: models.RoleAdminPending},
		models.RoleChefPending:  {EventApproveChef: models.RoleChef, EventRejectChef: models.RoleUser},
		models.RoleAdminPending: {EventApproveAdmin: models.RoleAdmin, EventRejectAdmin: models.RoleUser},
		models.RoleChef:         {EventDemoteChef: models.RoleUser},
		models.RoleAdmin:        {},
	}

	for _, from := range allRoles {
		for _, ev := range allEvents {
			got, err := Transition(from, ev)
			want, ok := allowed[from][ev]
			if ok {
				if err != nil || got != want {
					t.Errorf("%s --%s--> got (%s, %v), want %s", from, ev, got, err, want)
				}
				continue
			}
			if err == nil {
				t.Errorf("%s --%s--> %s should be rejected", from, ev, got)
			}
			if got != from {
				t.Errorf("rejected transition changed role to %s", got)
			}
		}
	}
}

func TestNoDirectPromotion(t *testing.T) {
	for _, ev := range allEvents {
		to, err := Transition(models.RoleUser, ev)
		if err == nil && (to == models.RoleChef || to == models.RoleAdmin) {
			t.Fatalf("user reached %s directly via %s", to, ev)
		}
	}
}

func TestDuplicateRequestsAreConflicts(t *testing.T) {
	tests := []struct {
		from models.Role
		ev   Event
	}{
		{models.RoleChef, EventRequestChef},
		{models.RoleChefPending, EventRequestChef},
		{models.RoleAdmin, EventRequestAdmin},
		{models.RoleAdminPending, EventRequestAdmin},
	}
	for _, tt := range tests {
		_, err := Transition(tt.from, tt.ev)
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Errorf("%s --%s--> err = %v, want Conflict", tt.from, tt.ev, err)
		}
	}
}

func TestOutOfOrderIsInvalidState(t *testing.T) {
	_, err := Transition(models.RoleUser, EventApproveChef)
	if apperr.KindOf(err) != apperr.KindInvalidState {
		t.Fatalf("err = %v, want InvalidState", err)
	}
}

func TestUnknownEvent(t *testing.T) {
	if _, err := Transition(models.RoleUser, Event(99)); err == nil {
		t.Fatal("expected error for unknown event")
	}
}

package accounts

import (
	"fmt"

	"homedish/apperr"
	"homedish/models"
)

// Event is a role-axis transition request.
type Event int

const (
	EventRequestChef Event = iota
	EventApproveChef
	EventRejectChef
	EventRequestAdmin
	EventApproveAdmin
	EventRejectAdmin
	EventDemoteChef
)

func (e Event) String() string {
	switch e {
	case EventRequestChef:
		return "request chef"
	case EventApproveChef:
		return "approve chef"
	case EventRejectChef:
		return "reject chef"
	case EventRequestAdmin:
		return "request admin"
	case EventApproveAdmin:
		return "approve admin"
	case EventRejectAdmin:
		return "reject admin"
	case EventDemoteChef:
		return "demote chef"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Rule returns the only role ev may leave from and the role it leads to.
func Rule(ev Event) (from, to models.Role, err error) {
	switch ev {
	case EventRequestChef:
		return models.RoleUser, models.RoleChefPending, nil
	case EventApproveChef:
		return models.RoleChefPending, models.RoleChef, nil
	case EventRejectChef:
		return models.RoleChefPending, models.RoleUser, nil
	case EventRequestAdmin:
		return models.RoleUser, models.RoleAdminPending, nil
	case EventApproveAdmin:
		return models.RoleAdminPending, models.RoleAdmin, nil
	case EventRejectAdmin:
		return models.RoleAdminPending, models.RoleUser, nil
	case EventDemoteChef:
		return models.RoleChef, models.RoleUser, nil
	}
	return "", "", fmt.Errorf("unknown role event %d", int(ev))
}

// Transition applies ev to the current role.
func Transition(current models.Role, ev Event) (models.Role, error) {
	from, to, err := Rule(ev)
	if err != nil {
		return current, err
	}
	if current != from {
		return current, invalidTransition(current, ev)
	}
	return to, nil
}

func invalidTransition(current models.Role, ev Event) error {
	switch {
	case ev == EventRequestChef && current == models.RoleChef:
		return apperr.Conflict("account is already a chef")
	case ev == EventRequestChef && current == models.RoleChefPending:
		return apperr.Conflict("chef request is already pending")
	case ev == EventRequestAdmin && current == models.RoleAdmin:
		return apperr.Conflict("account is already an admin")
	case ev == EventRequestAdmin && current == models.RoleAdminPending:
		return apperr.Conflict("admin request is already pending")
	}
	return apperr.InvalidState(fmt.Sprintf("cannot %s while role is %s", ev, current))
}

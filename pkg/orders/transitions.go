package orders

import "mercadito-backend/pkg/models"

// transitions is the optional forward-only lifecycle graph, enforced only
// when orders.enforce_transitions is set. With enforcement off any status
// may move to any other, which matches the historical behavior.
var transitions = map[string][]string{
	models.StatusPending:   {models.StatusConfirmed, models.StatusEnRoute, models.StatusCompleted, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusEnRoute, models.StatusCompleted, models.StatusCancelled},
	models.StatusEnRoute:   {models.StatusCompleted, models.StatusCancelled},
	models.StatusCompleted: {},
	models.StatusCancelled: {},
}

// TransitionAllowed reports whether the table permits moving from one status
// to another. A no-op transition is always allowed.
func TransitionAllowed(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

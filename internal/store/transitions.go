package store

import "github.com/joelson-hub/Pianelsenhas/internal/models"

// transitionMap lists the statuses each action may start from. Calling an
// already-calling ticket is a legal self-transition: it reassigns the
// ticket to another counter.
var transitionMap = map[string][]string{
	"call":   {models.StatusWaiting, models.StatusCalling},
	"finish": {models.StatusCalling},
	"miss":   {models.StatusCalling},
}

func ValidTransition(action, fromStatus string) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}

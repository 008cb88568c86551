// Package items implements the item lifecycle: submission, owner edits,
// soft deletion and visibility-aware reads.
package items

import "github.com/chris/clothing-swap-settlement/pkg/models"

var transitions = map[models.ItemStatus][]models.ItemStatus{
	models.ItemPending:   {models.ItemAvailable, models.ItemRejected, models.ItemRemoved},
	models.ItemAvailable: {models.ItemPending, models.ItemSwapping, models.ItemRedeemed, models.ItemRemoved},
	models.ItemSwapping:  {models.ItemSwapped},
	models.ItemRejected:  {models.ItemRemoved},
}

// CanTransition reports whether an item may move from one status to another.
func CanTransition(from, to models.ItemStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition returns a *models.StateError unless item may move to the target status.
func Transition(item *models.Item, to models.ItemStatus) error {
	if CanTransition(item.Status, to) {
		return nil
	}
	return &models.StateError{Entity: "item " + item.ID, Current: string(item.Status)}
}

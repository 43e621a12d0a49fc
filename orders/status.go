package orders

import "mjolnir/models"

// Fulfilment statuses move strictly forward. Cancellation is not part of
// this lattice; it has its own endpoint and only applies to processing
// orders.
var statusRank = map[string]int{
	models.StatusProcessing: 0,
	models.StatusInTransit:  1,
	models.StatusDelivered:  2,
}

// ValidStatus reports whether s is a known fulfilment status.
func ValidStatus(s string) bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether an order may move from one status to
// another. Only strictly forward moves are allowed; repeating the current
// status is rejected too.
func CanTransition(from, to string) bool {
	fromRank, okFrom := statusRank[from]
	toRank, okTo := statusRank[to]
	return okFrom && okTo && toRank > fromRank
}

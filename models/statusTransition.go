package models

// allowedTransitions maps a status to the statuses it may move to.
// Cancellation is handled separately: any non-cancelled status may be cancelled.
var allowedTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusPendingDraft: {
		TransactionStatusUnpaid,
		TransactionStatusPaid,
	},
	TransactionStatusUnpaid: {
		TransactionStatusUnpaid,
		TransactionStatusPaid,
		TransactionStatusPaidEarly,
	},
	TransactionStatusPaid:      {},
	TransactionStatusPaidEarly: {},
	TransactionStatusCancelled: {},
}

func CanTransition(from, to TransactionStatus) bool {
	if to == TransactionStatusCancelled {
		return from != TransactionStatusCancelled && from.IsValid()
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ValidateTransition(from, to TransactionStatus) error {
	if !CanTransition(from, to) {
		return ErrTransactionClosed.Withf("cannot move transaction from %s to %s", from, to)
	}
	return nil
}

package state

type Action string

const (
	ActionFetchCards                 Action = "cards/fetchCards"
	ActionAddCard                    Action = "cards/addCard"
	ActionToggleCardFreeze           Action = "cards/toggleCardFreeze"
	ActionToggleCardNumberVisibility Action = "cards/toggleCardNumberVisibility"
	ActionUpdateCard                 Action = "cards/updateCard"
	ActionDeleteCard                 Action = "cards/deleteCard"
	ActionFetchTransactions          Action = "transactions/fetchTransactions"
	ActionFetchTransactionsByCard    Action = "transactions/fetchTransactionsByCard"
)

type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseFulfilled Phase = "fulfilled"
	PhaseRejected  Phase = "rejected"
)

// Event is emitted to subscribers on every phase transition, after the
// state has been updated.
type Event struct {
	Action Action
	Phase  Phase
	// CardID is set for actions that target one card.
	CardID string
	// Err is the stored error message on PhaseRejected.
	Err string
}

type Listener func(Event)

package event

type (
	// Type of the event.
	Type int

	// Event is a single entry of the append-only, per-call-ordered stream
	// the host exposes. Events of one call become observable only when the
	// call commits, in emission order, tagged with the call's batch
	// sequence number.
	Event struct {
		Type    Type
		Batch   uint64
		Content any
	}

	// Handler consumes committed events.
	Handler func(e *Event)
)

const (
	Error Type = iota
	BatchStarted
	TransferProcessed
	BurnProcessed
	WalletCreated
	WalletRecovered
	BatchCompleted
)

// BatchInfo is the content of a BatchStarted event.
type BatchInfo struct {
	Engine   string
	Requests int
}

func (t Type) String() string {
	switch t {
	case BatchStarted:
		return "batch_started"
	case TransferProcessed:
		return "transfer_processed"
	case BurnProcessed:
		return "burn_processed"
	case WalletCreated:
		return "wallet_created"
	case WalletRecovered:
		return "wallet_recovered"
	case BatchCompleted:
		return "batch_completed"
	default:
		return "error"
	}
}

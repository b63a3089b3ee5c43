package order

// Status is a purchase order lifecycle state
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusIssued    Status = "issued"
	StatusReceived  Status = "received"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusReturned  Status = "returned"
)

// purchaseOrderTransitions is the authoritative transition table. State
// checks anywhere else in the system go through CanTransitionTo; nothing
// compares status strings directly.
var purchaseOrderTransitions = map[Status][]Status{
	StatusDraft:     {StatusPending, StatusCancelled},
	StatusPending:   {StatusApproved, StatusCancelled},
	StatusApproved:  {StatusIssued, StatusCancelled},
	StatusIssued:    {StatusReceived, StatusCancelled},
	StatusReceived:  {StatusCompleted, StatusCancelled},
	StatusCompleted: {StatusReturned},
	StatusCancelled: {},
	StatusReturned:  {},
}

// IsValid checks if the status is a known purchase order state
func (s Status) IsValid() bool {
	_, ok := purchaseOrderTransitions[s]
	return ok
}

// CanTransitionTo reports whether the transition table allows moving from
// this state to the target state
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range purchaseOrderTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return len(purchaseOrderTransitions[s]) == 0
}

// ReturnStatus is a return order lifecycle state
type ReturnStatus string

const (
	ReturnPending        ReturnStatus = "pending"
	ReturnAwaitingPickup ReturnStatus = "awaiting_pickup"
	ReturnInTransit      ReturnStatus = "in_transit"
	ReturnCompleted      ReturnStatus = "completed"
	ReturnCancelled      ReturnStatus = "cancelled"
)

var returnOrderTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnPending:        {ReturnAwaitingPickup, ReturnCancelled},
	ReturnAwaitingPickup: {ReturnInTransit, ReturnCancelled},
	ReturnInTransit:      {ReturnCompleted, ReturnCancelled},
	ReturnCompleted:      {},
	ReturnCancelled:      {},
}

// IsValid checks if the status is a known return order state
func (s ReturnStatus) IsValid() bool {
	_, ok := returnOrderTransitions[s]
	return ok
}

// CanTransitionTo reports whether the transition table allows moving from
// this state to the target state
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	for _, allowed := range returnOrderTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s ReturnStatus) IsTerminal() bool {
	return len(returnOrderTransitions[s]) == 0
}

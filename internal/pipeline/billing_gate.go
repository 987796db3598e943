package pipeline

import "context"

// billingGate authorizes and debits the mission cost before any executor
// work runs. Cost is never charged for work not yet attempted, and work
// never runs unbilled: a debit failure is terminal for this attempt and is
// surfaced verbatim.
func (p *Pipeline) billingGate(ctx context.Context, st *State) bool {
	if p.ledger == nil {
		return p.reject(st, "billing unavailable: no ledger configured")
	}
	cost := st.Spec.Tool.CostClass()
	receipt, err := p.ledger.Debit(ctx, st.UserID, cost, "mission "+st.ID+" via "+st.Spec.Tool.String())
	if err != nil {
		return p.reject(st, err.Error())
	}
	st.Receipt = &receipt
	p.transition(st, StatusApproved)
	return true
}

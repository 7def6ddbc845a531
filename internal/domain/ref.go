package domain

// Ref is a reference snapshot: the id of a master entity together with the
// name it had when the association was made. Renaming the master entity later
// does not change NameAtBooking, so historical tours keep printing the name
// the customer saw.
//
// An empty ID means the reference is unresolved and must be fixed during
// import review.
type Ref struct {
	ID            string `json:"id"`
	NameAtBooking string `json:"nameAtBooking"`
}

// Resolved reports whether the reference points at a master entity.
func (r Ref) Resolved() bool {
	return r.ID != ""
}

// RefTo builds a snapshot of e as it looks right now.
func RefTo(e MasterEntity) Ref {
	return Ref{ID: e.ID.String(), NameAtBooking: e.Name}
}

package importer

import (
	"fmt"
	"strings"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/textnorm"
)

// Row is one tour awaiting confirmation, alongside the names it was imported
// with.
type Row struct {
	Tour domain.Tour `json:"tour"`
	Raw  RawNames    `json:"raw"`
}

// Issue identifies a reference that still blocks confirmation.
type Issue struct {
	Row   int   `json:"row"`
	Field Field `json:"field"`
}

// Review is the reconciliation state of one import batch. Operators fix
// unresolved references with SetRef or Backfill, then call Confirm.
// A Review is not safe for concurrent use.
type Review struct {
	rows []Row
}

// NewReview starts a review over resolved import rows.
func NewReview(resolutions []Resolution) *Review {
	rows := make([]Row, len(resolutions))
	for i, r := range resolutions {
		rows[i] = Row{Tour: r.Tour, Raw: r.Raw}
	}
	return &Review{rows: rows}
}

// NewReviewFromTours starts a review over tours edited outside this process,
// such as a batch posted back by the review screen.
func NewReviewFromTours(tours []domain.Tour) *Review {
	rows := make([]Row, len(tours))
	for i, t := range tours {
		rows[i] = Row{Tour: t}
	}
	return &Review{rows: rows}
}

// Rows returns a copy of the current rows.
func (r *Review) Rows() []Row {
	out := make([]Row, len(r.rows))
	copy(out, r.rows)
	return out
}

// SetRef replaces a reference on row i, typically from a selector over the
// existing master entities.
func (r *Review) SetRef(i int, f Field, ref domain.Ref) error {
	if i < 0 || i >= len(r.rows) {
		return fmt.Errorf("%w: row %d out of range", domain.ErrValidation, i+1)
	}
	*refFor(&r.rows[i].Tour, f) = ref
	return nil
}

// Backfill points row i's reference at a master entity that was just created
// for it. The entity's kind must match the field.
func (r *Review) Backfill(i int, f Field, e domain.MasterEntity) error {
	if e.Kind != f.Kind() {
		return fmt.Errorf("%w: %s cannot reference %s", domain.ErrValidation, f, e.Kind)
	}
	return r.SetRef(i, f, domain.RefTo(e))
}

// BackfillAll points every row whose field is unresolved and whose raw name
// normalizes like e's name at e. It returns how many rows changed.
func (r *Review) BackfillAll(f Field, e domain.MasterEntity) (int, error) {
	if e.Kind != f.Kind() {
		return 0, fmt.Errorf("%w: %s cannot reference %s", domain.ErrValidation, f, e.Kind)
	}
	key := textnorm.Normalize(e.Name)
	n := 0
	for i := range r.rows {
		ref := refFor(&r.rows[i].Tour, f)
		if ref.Resolved() {
			continue
		}
		if key != "" && textnorm.Normalize(ref.NameAtBooking) == key {
			*ref = domain.RefTo(e)
			n++
		}
	}
	return n, nil
}

// Unresolved lists every row and field still lacking an id.
func (r *Review) Unresolved() []Issue {
	var out []Issue
	for i := range r.rows {
		for _, f := range Fields {
			if !refFor(&r.rows[i].Tour, f).Resolved() {
				out = append(out, Issue{Row: i, Field: f})
			}
		}
	}
	return out
}

// Ready reports whether Confirm would succeed.
func (r *Review) Ready() bool {
	return len(r.Unresolved()) == 0
}

// Confirm returns the reviewed tours once every row has company, guide and
// nationality ids. Otherwise it returns domain.ErrUnresolvedReferences naming
// the offending rows (1-based) and fields.
func (r *Review) Confirm() ([]domain.Tour, error) {
	if issues := r.Unresolved(); len(issues) > 0 {
		parts := make([]string, len(issues))
		for i, is := range issues {
			parts[i] = fmt.Sprintf("row %d: %s required", is.Row+1, is.Field)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrUnresolvedReferences, strings.Join(parts, "; "))
	}
	tours := make([]domain.Tour, len(r.rows))
	for i, row := range r.rows {
		tours[i] = row.Tour
	}
	return tours, nil
}

package codec

// Disposition describes what happened to a single record during a batch.
type Disposition string

const (
	Kept            Disposition = "kept"
	KeptWithWarning Disposition = "kept-with-warning"
	Dropped         Disposition = "dropped"
)

// Outcome is the per-record result of an encode or decode.
type Outcome struct {
	Index       int         // source row on encode, frame ordinal on decode
	Offset      int         // frame offset on decode, -1 on encode
	Disposition Disposition
	Record      Transaction
	Err         error // nil when Kept
}

// Report aggregates the outcomes that need attention. Cleanly kept records
// are counted but not listed.
type Report struct {
	Total    int
	Kept     int
	Dropped  int
	Warnings int
	Issues   []Outcome
}

func (r *Report) add(o Outcome) {
	r.Total++
	switch o.Disposition {
	case Dropped:
		r.Dropped++
		r.Issues = append(r.Issues, o)
	case KeptWithWarning:
		r.Kept++
		r.Warnings++
		r.Issues = append(r.Issues, o)
	default:
		r.Kept++
	}
}

// Clean reports whether every record was kept without warnings.
func (r *Report) Clean() bool {
	return r.Dropped == 0 && r.Warnings == 0
}

package lineage

// FindingCode classifies an advisory data-quality observation. Findings are
// returned next to a complete result; they never abort a query.
type FindingCode string

const (
	CycleDetected       FindingCode = "CycleDetected"
	OrphanSale          FindingCode = "OrphanSale"
	QuantityOverdraw    FindingCode = "QuantityOverdraw"
	ExpiredAtSale       FindingCode = "ExpiredAtSale"
	DanglingReference   FindingCode = "DanglingReference"
	RemainingOutOfRange FindingCode = "RemainingOutOfRange"
	HopLimitReached     FindingCode = "HopLimitReached"
)

// Finding is one advisory observation about Subject.
type Finding struct {
	Code    FindingCode
	Subject Key
	Message string
}

// MergeFindings appends the findings of every list in order, dropping exact
// repeats of (code, subject, message).
func MergeFindings(lists ...[]Finding) []Finding {
	type fk struct {
		code    FindingCode
		subject Key
		msg     string
	}
	seen := make(map[fk]struct{})
	out := make([]Finding, 0)
	for _, l := range lists {
		for _, f := range l {
			k := fk{f.Code, f.Subject, f.Message}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

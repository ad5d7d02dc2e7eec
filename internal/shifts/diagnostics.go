package shifts

import (
	"errors"
	"fmt"
	"strings"

	"shiftscan/internal/domain"
)

type DiagnosticsOptions struct {
	IncludeCandidates bool
	// YearMonth, when set, counts accepted shifts dated outside that month.
	YearMonth string
}

type ReasonCount struct {
	Reason domain.Reason
	Count  int
}

type RejectionLine struct {
	Position  int
	Reason    domain.Reason
	Detail    string
	Candidate string
}

type DuplicateGroup struct {
	Key       string
	Positions []int
}

// Report is the operator-facing summary of one batch.
type Report struct {
	Accepted      int
	Rejected      int
	ByReason      []ReasonCount
	Rejections    []RejectionLine
	Duplicates    []DuplicateGroup
	OutsideAnchor int

	Malformed     bool
	MalformedText string
	MalformedErr  string
}

func Diagnose(result domain.ShiftBatchResult, opts DiagnosticsOptions) Report {
	report := Report{
		Accepted: len(result.Shifts),
		Rejected: len(result.Rejected),
	}

	counts := make(map[domain.Reason]int)
	for _, entry := range result.Rejected {
		counts[entry.Reason]++
		line := RejectionLine{
			Position: entry.Candidate.Position,
			Reason:   entry.Reason,
			Detail:   entry.Detail,
		}
		if opts.IncludeCandidates {
			line.Candidate = string(entry.Candidate.Raw)
		}
		report.Rejections = append(report.Rejections, line)
	}
	for _, reason := range domain.Reasons {
		if n := counts[reason]; n > 0 {
			report.ByReason = append(report.ByReason, ReasonCount{Reason: reason, Count: n})
		}
	}

	seen := make(map[string]int)
	for _, shift := range result.Shifts {
		key := shift.Key()
		idx, ok := seen[key]
		if !ok {
			seen[key] = len(report.Duplicates)
			report.Duplicates = append(report.Duplicates, DuplicateGroup{Key: key, Positions: []int{shift.Position}})
			continue
		}
		report.Duplicates[idx].Positions = append(report.Duplicates[idx].Positions, shift.Position)
	}
	dups := report.Duplicates[:0]
	for _, group := range report.Duplicates {
		if len(group.Positions) > 1 {
			dups = append(dups, group)
		}
	}
	report.Duplicates = dups

	if opts.YearMonth != "" {
		prefix := opts.YearMonth + "-"
		for _, shift := range result.Shifts {
			if !strings.HasPrefix(shift.Date, prefix) {
				report.OutsideAnchor++
			}
		}
	}
	return report
}

// DiagnoseFailure reports a batch that could not be parsed at all. Errors other
// than a malformed batch give an empty report. The offending text is always
// quoted; it is cut at maxQuotedText unless IncludeCandidates is set.
func DiagnoseFailure(err error, opts DiagnosticsOptions) Report {
	var malformed *MalformedBatchError
	if !errors.As(err, &malformed) {
		return Report{}
	}
	report := Report{Malformed: true}
	report.MalformedText = truncateText(malformed.Text)
	if opts.IncludeCandidates {
		report.MalformedText = malformed.Text
	}
	if malformed.Err != nil {
		report.MalformedErr = malformed.Err.Error()
	}
	return report
}

// ReasonBreakdown renders the per-reason counts as "Reason=n,Reason=n".
func (r Report) ReasonBreakdown() string {
	parts := make([]string, 0, len(r.ByReason))
	for _, rc := range r.ByReason {
		parts = append(parts, fmt.Sprintf("%s=%d", rc.Reason, rc.Count))
	}
	return strings.Join(parts, ",")
}

func (r Report) String() string {
	var b strings.Builder
	if r.Malformed {
		b.WriteString("The recognizer response could not be read as a list of shifts.")
		if r.MalformedErr != "" {
			b.WriteString(" (" + r.MalformedErr + ")")
		}
		b.WriteString("\n")
		if r.MalformedText != "" {
			b.WriteString("Response:\n" + r.MalformedText + "\n")
		}
		return b.String()
	}

	fmt.Fprintf(&b, "%d accepted, %d rejected", r.Accepted, r.Rejected)
	if len(r.ByReason) > 0 {
		fmt.Fprintf(&b, " (%s)", r.ReasonBreakdown())
	}
	b.WriteString("\n")
	for _, line := range r.Rejections {
		fmt.Fprintf(&b, "- #%d %s: %s\n", line.Position+1, line.Reason, line.Detail)
		if line.Candidate != "" {
			fmt.Fprintf(&b, "  %s\n", line.Candidate)
		}
	}
	for _, group := range r.Duplicates {
		positions := make([]string, len(group.Positions))
		for i, p := range group.Positions {
			positions[i] = fmt.Sprintf("#%d", p+1)
		}
		fmt.Fprintf(&b, "- duplicate %s at %s\n", group.Key, strings.Join(positions, ", "))
	}
	if r.OutsideAnchor > 0 {
		fmt.Fprintf(&b, "- %d shift(s) dated outside the selected month\n", r.OutsideAnchor)
	}
	return b.String()
}

package shifts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"shiftscan/internal/domain"
)

const (
	fieldDate  = "date"
	fieldStart = "start"
	fieldEnd   = "end"
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
)

// Validate parses sanitized recognizer output and splits it into accepted
// shifts and rejected entries. Only a structurally broken batch is an error.
func Validate(candidate string) (domain.ShiftBatchResult, error) {
	text := strings.TrimSpace(candidate)
	if text == "" {
		return domain.ShiftBatchResult{}, &MalformedBatchError{Text: candidate, Err: errors.New("empty response")}
	}

	elements, err := decodeList(text)
	if err != nil {
		return domain.ShiftBatchResult{}, &MalformedBatchError{Text: candidate, Err: err}
	}

	result := domain.ShiftBatchResult{
		Shifts:   []domain.ValidatedShift{},
		Rejected: []domain.RejectedEntry{},
	}
	for i, raw := range elements {
		record := decodeCandidate(i, raw)
		shift, reason, detail := validateRecord(record)
		if reason != "" {
			result.Rejected = append(result.Rejected, domain.RejectedEntry{
				Candidate: record,
				Reason:    reason,
				Detail:    detail,
			})
			continue
		}
		result.Shifts = append(result.Shifts, shift)
	}
	return result, nil
}

func decodeList(text string) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, errors.New("expected a JSON list")
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	var elements []json.RawMessage
	if err := dec.Decode(&elements); err != nil {
		return nil, fmt.Errorf("parsing JSON list: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON list")
	}
	return elements, nil
}

func decodeCandidate(position int, raw json.RawMessage) domain.CandidateShiftRecord {
	record := domain.CandidateShiftRecord{
		Position: position,
		Raw:      append(json.RawMessage(nil), raw...),
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return record
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil {
		record.Fields = fields
	}
	return record
}

type fieldState int

const (
	fieldPresent fieldState = iota
	fieldMissing
	fieldNotString
	fieldAmbiguous
)

// lookupField prefers the exact key. Otherwise exactly one key may match
// case-insensitively; two or more variants ("End" and "END") are ambiguous.
func lookupField(fields map[string]json.RawMessage, name string) (json.RawMessage, fieldState) {
	if raw, ok := fields[name]; ok {
		return raw, fieldPresent
	}
	var found json.RawMessage
	matches := 0
	for key, raw := range fields {
		if strings.EqualFold(strings.TrimSpace(key), name) {
			found = raw
			matches++
		}
	}
	switch matches {
	case 0:
		return nil, fieldMissing
	case 1:
		return found, fieldPresent
	default:
		return nil, fieldAmbiguous
	}
}

func readField(fields map[string]json.RawMessage, name string) (string, fieldState) {
	raw, state := lookupField(fields, name)
	if state != fieldPresent {
		return "", state
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return "", fieldMissing
	}
	var value string
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return "", fieldNotString
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fieldMissing
	}
	return value, fieldPresent
}

func validateRecord(record domain.CandidateShiftRecord) (domain.ValidatedShift, domain.Reason, string) {
	if record.Fields == nil {
		return domain.ValidatedShift{}, domain.ReasonInvalidFormat, "record is not a JSON object"
	}

	names := []string{fieldDate, fieldStart, fieldEnd}
	values := make(map[string]string, len(names))
	states := make(map[string]fieldState, len(names))
	for _, name := range names {
		values[name], states[name] = readField(record.Fields, name)
	}

	for _, name := range names {
		if states[name] == fieldMissing {
			return domain.ValidatedShift{}, domain.ReasonMissingField, fmt.Sprintf("%s is missing", name)
		}
	}
	for _, name := range names {
		if states[name] == fieldNotString {
			return domain.ValidatedShift{}, domain.ReasonInvalidFormat, fmt.Sprintf("%s must be a string", name)
		}
		if states[name] == fieldAmbiguous {
			return domain.ValidatedShift{}, domain.ReasonInvalidFormat, fmt.Sprintf("%s is given more than once with different case", name)
		}
	}

	date := values[fieldDate]
	if !validDate(date) {
		return domain.ValidatedShift{}, domain.ReasonInvalidFormat, fmt.Sprintf("date %q is not YYYY-MM-DD", date)
	}
	start, startMinute, ok := normalizeClock(values[fieldStart])
	if !ok {
		return domain.ValidatedShift{}, domain.ReasonInvalidFormat, fmt.Sprintf("start %q is not HH:MM", values[fieldStart])
	}
	end, endMinute, ok := normalizeClock(values[fieldEnd])
	if !ok {
		return domain.ValidatedShift{}, domain.ReasonInvalidFormat, fmt.Sprintf("end %q is not HH:MM", values[fieldEnd])
	}

	if endMinute <= startMinute {
		return domain.ValidatedShift{}, domain.ReasonInvalidInterval, fmt.Sprintf("end %s is not after start %s", end, start)
	}

	return domain.ValidatedShift{
		Position:    record.Position,
		Date:        date,
		Start:       start,
		End:         end,
		StartMinute: startMinute,
		EndMinute:   endMinute,
	}, "", ""
}

func validDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// normalizeClock accepts H:MM or HH:MM and returns the zero-padded form and
// the minutes after midnight.
func normalizeClock(s string) (string, int, bool) {
	match := timePattern.FindStringSubmatch(s)
	if match == nil {
		return "", 0, false
	}
	hour, _ := strconv.Atoi(match[1])
	minute, _ := strconv.Atoi(match[2])
	return fmt.Sprintf("%02d:%02d", hour, minute), hour*60 + minute, true
}

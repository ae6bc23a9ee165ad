package mistake

import (
	"sort"
	"strings"
)

// Subject tags a record with the course area it belongs to.
type Subject string

const (
	SubjectMath           Subject = "math"
	SubjectDataStructures Subject = "data_structures"
	SubjectCompOrg        Subject = "comp_org"
	SubjectOS             Subject = "os"
	SubjectNetwork        Subject = "network"
	SubjectOther          Subject = "other"
)

// ErrorType tags a record with the kind of mistake the learner made.
type ErrorType string

const (
	ErrorConcept      ErrorType = "concept"
	ErrorCalculation  ErrorType = "calculation"
	ErrorLogic        ErrorType = "logic"
	ErrorCarelessness ErrorType = "carelessness"
	ErrorOther        ErrorType = "other"
)

var subjectAliases = map[string]Subject{
	"math":            SubjectMath,
	"datastructures":  SubjectDataStructures,
	"data_structures": SubjectDataStructures,
	"comporg":         SubjectCompOrg,
	"comp_org":        SubjectCompOrg,
	"os":              SubjectOS,
	"network":         SubjectNetwork,
	"other":           SubjectOther,
}

var errorTypeAliases = map[string]ErrorType{
	"concept":      ErrorConcept,
	"calculation":  ErrorCalculation,
	"logic":        ErrorLogic,
	"carelessness": ErrorCarelessness,
	"other":        ErrorOther,
}

// ParseSubject normalizes a subject label, tolerating the CamelCase spellings
// the analyzer emits ("DataStructures", "CompOrg").
func ParseSubject(value string) (Subject, bool) {
	subject, ok := subjectAliases[strings.ToLower(strings.TrimSpace(value))]
	return subject, ok
}

// ParseErrorType normalizes an error-type label.
func ParseErrorType(value string) (ErrorType, bool) {
	errType, ok := errorTypeAliases[strings.ToLower(strings.TrimSpace(value))]
	return errType, ok
}

// Subjects returns every known subject in presentation order.
func Subjects() []Subject {
	return []Subject{
		SubjectMath,
		SubjectDataStructures,
		SubjectCompOrg,
		SubjectOS,
		SubjectNetwork,
		SubjectOther,
	}
}

// ErrorTypes returns every known error type in presentation order.
func ErrorTypes() []ErrorType {
	return []ErrorType{
		ErrorConcept,
		ErrorCalculation,
		ErrorLogic,
		ErrorCarelessness,
		ErrorOther,
	}
}

// NormalizeTags deduplicates and trims free-form knowledge tags. Tag order is
// not meaningful, so the result is sorted for stable persistence.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

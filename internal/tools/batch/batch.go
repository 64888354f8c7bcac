package batch

import (
	"encoding/json"
	"fmt"

	"github.com/teemow/calassist/internal/calendar"
)

// Item status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of one item of a batch.
type Result struct {
	Index   int    `json:"index"`
	Status  string `json:"status"`
	Summary string `json:"summary,omitempty"`
	EventID string `json:"eventId,omitempty"`
	Link    string `json:"htmlLink,omitempty"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BatchResult aggregates the results of a batch.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseObjectArray accepts a single JSON object or an array of objects.
func ParseObjectArray(param any, paramName string) ([]map[string]any, error) {
	switch v := param.(type) {
	case nil:
		return nil, fmt.Errorf("%s is required", paramName)
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		items := make([]map[string]any, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be an object", paramName, i)
			}
			items = append(items, obj)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("%s must be an object or array of objects", paramName)
	}
}

// NewSuccessResult creates a success result for the item at index.
func NewSuccessResult(index int, message string) Result {
	return Result{Index: index, Status: StatusSuccess, Result: message}
}

// NewErrorResult creates an error result for the item at index.
func NewErrorResult(index int, err error) Result {
	res := Result{Index: index, Status: StatusError, Error: "unknown error"}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// FromInsertResult converts one insert result, keeping the item index.
func FromInsertResult(index int, r calendar.InsertResult, message string) Result {
	if !r.OK() {
		err := r.Err
		if err == nil {
			err = fmt.Errorf("%w: empty response", calendar.ErrProvider)
		}
		res := NewErrorResult(index, err)
		if r.Event != nil {
			res.Summary = r.Event.Summary()
		}
		return res
	}

	res := NewSuccessResult(index, message)
	res.Summary = r.Event.Summary()
	res.EventID = r.Created.ID
	res.Link = r.Created.HTMLLink
	return res
}

// Summarize aggregates results into a BatchResult.
func Summarize(results []Result) BatchResult {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}
	return br
}

// FormatResults renders results as indented JSON.
func FormatResults(results []Result) string {
	jsonBytes, _ := json.MarshalIndent(Summarize(results), "", "  ")
	return string(jsonBytes)
}

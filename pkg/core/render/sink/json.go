package sink

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/matzehuels/tracklayout/pkg/core/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	session string
	compact bool
}

// WithJSONSession records the session whose modes produced the result.
func WithJSONSession(id string) JSONOption { return func(r *jsonRenderer) { r.session = id } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	*layout.Result
	Session string           `json:"session_id,omitempty"`
	RowIDs  map[int][]string `json:"row_ids,omitempty"`
}

// RenderJSON exports the result as a JSON document: canvas size, band
// offsets, every placement with its mode and swarm offsets, the issues
// found during the pass and, for each interval row, its item ids from left
// to right.
//
// RenderJSON returns an error only if marshalling fails. It does not
// modify res.
func RenderJSON(res *layout.Result, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Result:  res,
		Session: r.session,
		RowIDs:  rowIDs(res),
	}
	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}

func rowIDs(res *layout.Result) map[int][]string {
	intervals := res.Intervals()
	if len(intervals) == 0 {
		return nil
	}
	slices.SortStableFunc(intervals, func(a, b layout.Placement) int {
		return cmp.Compare(a.X, b.X)
	})
	rows := make(map[int][]string, res.Rows)
	for _, p := range intervals {
		rows[p.Row] = append(rows[p.Row], p.ID)
	}
	return rows
}

package paper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ID is the stable key of a record. Datasets emit numeric row indices or
// strings; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %s", data)
	}
	*id = ID(n.String())
	return nil
}

// IntID formats an integer row index as an ID.
func IntID(i int) ID { return ID(strconv.Itoa(i)) }

// Record is a single paper placed in the embedding.
type Record struct {
	ID       ID      `json:"id"`
	Title    string  `json:"title"`
	Authors  string  `json:"authors"`
	Session  string  `json:"session"`
	Location string  `json:"location"`
	URL      string  `json:"url,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// HasPosition reports whether both coordinates are finite numbers.
// Records without a position are skipped by the renderer.
func (r Record) HasPosition() bool {
	return isFinite(r.X) && isFinite(r.Y)
}

// HasURL reports whether the record links to a paper page.
func (r Record) HasURL() bool { return r.URL != "" }

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

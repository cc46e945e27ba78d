package io

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/papermap/pkg/errors"
	"github.com/matzehuels/papermap/pkg/paper"
)

// Dataset is a decoded record array.
type Dataset struct {
	Name    string         `json:"name"`
	Records []paper.Record `json:"records"`
	Skipped []Skip         `json:"skipped,omitempty"`
}

// Skip describes an entry left out while decoding.
type Skip struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type rawRecord struct {
	ID       json.RawMessage `json:"id"`
	Title    string          `json:"title"`
	Authors  string          `json:"authors"`
	Session  string          `json:"session"`
	Location string          `json:"location"`
	URL      string          `json:"url"`
	X        json.RawMessage `json:"x"`
	Y        json.RawMessage `json:"y"`
}

// ReadJSON decodes a dataset from r. Malformed entries are skipped; a
// document that is not an array, or that repeats an id, is an error.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Dataset, error) {
	var entries []json.RawMessage
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode")
	}

	ds := &Dataset{Records: make([]paper.Record, 0, len(entries))}
	seen := make(map[paper.ID]int, len(entries))
	for i, raw := range entries {
		rec, reason := decodeRecord(raw)
		if reason != "" {
			ds.Skipped = append(ds.Skipped, Skip{Index: i, Reason: reason})
			continue
		}
		if first, dup := seen[rec.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidDataset,
				"entry %d: duplicate id %q (first at entry %d)", i, rec.ID, first)
		}
		seen[rec.ID] = i
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func decodeRecord(raw json.RawMessage) (paper.Record, string) {
	var rr rawRecord
	if err := json.Unmarshal(raw, &rr); err != nil {
		return paper.Record{}, "not a record object"
	}
	if len(rr.ID) == 0 || string(rr.ID) == "null" {
		return paper.Record{}, "missing id"
	}
	var id paper.ID
	if err := id.UnmarshalJSON(rr.ID); err != nil {
		return paper.Record{}, err.Error()
	}
	x, ok := coordinate(rr.X)
	if !ok {
		return paper.Record{}, "missing or non-numeric x"
	}
	y, ok := coordinate(rr.Y)
	if !ok {
		return paper.Record{}, "missing or non-numeric y"
	}
	return paper.Record{
		ID:       id,
		Title:    rr.Title,
		Authors:  rr.Authors,
		Session:  rr.Session,
		Location: rr.Location,
		URL:      rr.URL,
		X:        x,
		Y:        y,
	}, ""
}

func coordinate(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ImportJSON reads the dataset file at path. The dataset is named after the
// file without its extension.
func ImportJSON(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ds, nil
}

// Source is a named dataset file.
type Source struct {
	Name string
	Path string
}

// ParseSource parses "name=path" or a bare path, in which case the name is
// the file's base name without extension.
func ParseSource(s string) (Source, error) {
	name, path, ok := strings.Cut(s, "=")
	if !ok {
		path = s
		name = strings.TrimSuffix(filepath.Base(s), filepath.Ext(s))
	}
	name, path = strings.TrimSpace(name), strings.TrimSpace(path)
	if name == "" || path == "" {
		return Source{}, errors.New(errors.ErrCodeInvalidInput, "invalid dataset %q (want name=path)", s)
	}
	return Source{Name: name, Path: path}, nil
}

// Catalog is an ordered list of datasets that can be switched between.
type Catalog struct {
	Datasets []*Dataset
}

// LoadCatalog imports every source in order. Names must be unique.
func LoadCatalog(specs []string) (*Catalog, error) {
	if len(specs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no dataset given")
	}
	c := &Catalog{}
	for _, spec := range specs {
		src, err := ParseSource(spec)
		if err != nil {
			return nil, err
		}
		if _, ok := c.Get(src.Name); ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "dataset %q given twice", src.Name)
		}
		ds, err := ImportJSON(src.Path)
		if err != nil {
			return nil, err
		}
		ds.Name = src.Name
		c.Datasets = append(c.Datasets, ds)
	}
	return c, nil
}

// Get returns the dataset with the given name.
func (c *Catalog) Get(name string) (*Dataset, bool) {
	for _, ds := range c.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return nil, false
}

// Names lists dataset names in load order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Datasets))
	for i, ds := range c.Datasets {
		names[i] = ds.Name
	}
	return names
}

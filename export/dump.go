package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/flytam/filenamify"

	"github.com/sukanto-m/wiki-featured/store"
)

// DumpFormat is a full-dump writing strategy. The format is picked
// once at startup; there's no silent mid-run switching.
type DumpFormat interface {
	Name() string
	Ext() string
	Write(w io.Writer, v store.Variant, it store.RowIter) error
}

// PickDumpFormat resolves a format name to a strategy. Unknown names
// fall back to the plainer jsonl format; the second return says
// whether the requested name was actually available.
func PickDumpFormat(name string) (DumpFormat, bool) {
	switch name {
	case "", "csv":
		return csvFormat{}, true
	case "jsonl":
		return jsonlFormat{}, true
	}
	return jsonlFormat{}, false
}

// Dump writes every row matching the filter to a single flat file in
// outDir, named for the variant and language tag. Returns the path
// written.
func (ex *Exporter) Dump(v store.Variant, filt *store.Filter, outDir, lang string, format DumpFormat) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	base, err := filenamify.Filenamify(v.Table+"_"+lang, filenamify.Options{})
	if err != nil {
		return "", err
	}
	path := filepath.Join(outDir, base+format.Ext())

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	it := ex.DB.Fetch(v, filt)
	defer it.Close()
	if err := format.Write(f, v, it); err != nil {
		return "", err
	}
	if err := it.Err(); err != nil {
		return "", err
	}
	return path, nil
}

type csvFormat struct{}

func (csvFormat) Name() string { return "csv" }
func (csvFormat) Ext() string  { return ".csv" }

func (csvFormat) Write(w io.Writer, v store.Variant, it store.RowIter) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "section", "title", v.AuxCol, "url"}); err != nil {
		return err
	}
	for it.Next() {
		r := it.Row()
		if err := cw.Write([]string{r.Date, r.Section, r.Title, r.Extra, r.URL}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonlFormat struct{}

func (jsonlFormat) Name() string { return "jsonl" }
func (jsonlFormat) Ext() string  { return ".jsonl" }

func (jsonlFormat) Write(w io.Writer, v store.Variant, it store.RowIter) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for it.Next() {
		r := it.Row()
		rec := map[string]string{
			"date":    r.Date,
			"section": r.Section,
			"title":   r.Title,
			v.AuxCol:  r.Extra,
			"url":     r.URL,
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

package storage

import (
	"encoding/json"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/grainsim/internal/propulsion"
)

type ExportData struct {
	Run    RunMetadata        `json:"run"`
	Series []propulsion.State `json:"series"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, series []propulsion.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Series: series})
}

func ExportCSV(w io.Writer, series []propulsion.State) error {
	return gocsv.Marshal(series, w)
}

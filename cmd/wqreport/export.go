package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/couchcryptid/water-quality-etl/internal/grouping"
	"github.com/couchcryptid/water-quality-etl/internal/pipeline"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
	formatYAML = "yaml"
	formatPNG  = "png"
)

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatCSV, formatYAML, formatPNG:
		return nil
	}
	return fmt.Errorf("unsupported format %q: use json, csv, yaml or png", format)
}

// write encodes v in the requested format. CSV output needs v to be a slice
// of row structs.
func write(w io.Writer, format string, v any) error {
	switch format {
	case formatCSV:
		return gocsv.Marshal(v, w)
	case formatPNG:
		return errors.New("png output is only available for the chart command")
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

type recordRow struct {
	ID        string `csv:"id" json:"id" yaml:"id"`
	Location  string `csv:"location" json:"location" yaml:"location"`
	Timestamp string `csv:"timestamp" json:"timestamp" yaml:"timestamp"`
	Analyte   string `csv:"analyte" json:"analyte" yaml:"analyte"`
	Raw       string `csv:"raw_result" json:"raw_result" yaml:"raw_result"`
	Result    string `csv:"result" json:"result" yaml:"result"`
	Unit      string `csv:"unit" json:"unit" yaml:"unit"`
	WaterType string `csv:"water_type" json:"water_type,omitempty" yaml:"water_type,omitempty"`
	Verdict   string `csv:"verdict" json:"verdict" yaml:"verdict"`
}

func recordRows(records []domain.Measurement) []*recordRow {
	rows := make([]*recordRow, 0, len(records))
	for _, m := range records {
		rows = append(rows, &recordRow{
			ID:        m.ID,
			Location:  m.Location,
			Timestamp: m.Timestamp,
			Analyte:   m.Analyte,
			Raw:       m.Reading.Raw,
			Result:    m.Reading.Display(),
			Unit:      m.Unit,
			WaterType: m.WaterType,
			Verdict:   string(m.Verdict),
		})
	}
	return rows
}

type groupRow struct {
	Key     string `csv:"key" json:"key" yaml:"key"`
	Title   string `csv:"title" json:"title" yaml:"title"`
	Records int    `csv:"records" json:"records" yaml:"records"`
	Times   int    `csv:"timestamps" json:"timestamps" yaml:"timestamps"`
	Default bool   `csv:"default" json:"default" yaml:"default"`
}

func groupRows(snap *pipeline.Snapshot) []*groupRow {
	def, _ := snap.Groups.Default()
	keys := snap.Groups.Keys()
	rows := make([]*groupRow, 0, len(keys))
	for _, key := range keys {
		g, _ := snap.Groups.Select(key)
		rows = append(rows, &groupRow{
			Key:     g.Key,
			Title:   g.Title,
			Records: len(g.Records),
			Times:   len(g.Timestamps),
			Default: key == def,
		})
	}
	return rows
}

type pointRow struct {
	Panel  string  `csv:"panel"`
	Series string  `csv:"series"`
	Index  int     `csv:"index"`
	Label  string  `csv:"label"`
	Value  float64 `csv:"value"`
}

// pointRows flattens a chart to one row per plotted point.
func pointRows(c grouping.Chart) []*pointRow {
	var rows []*pointRow
	for _, panel := range c.Panels {
		for _, s := range panel.Series {
			for _, pt := range s.Points {
				rows = append(rows, &pointRow{
					Panel:  panel.Title,
					Series: s.Name,
					Index:  pt.Index,
					Label:  pt.Label,
					Value:  pt.Value,
				})
			}
		}
	}
	return rows
}

type summaryRow struct {
	Category     string `csv:"category" json:"category" yaml:"category"`
	Title        string `csv:"title" json:"title" yaml:"title"`
	Total        int    `csv:"total" json:"total" yaml:"total"`
	Compliant    int    `csv:"compliant" json:"compliant" yaml:"compliant"`
	NonCompliant int    `csv:"non_compliant" json:"non_compliant" yaml:"non_compliant"`
	Caution      int    `csv:"caution" json:"caution" yaml:"caution"`
	Exceeds      int    `csv:"exceeds" json:"exceeds" yaml:"exceeds"`
	Unknown      int    `csv:"unknown" json:"unknown" yaml:"unknown"`
}

func summaryRows(cards []pipeline.CategorySummary) []*summaryRow {
	rows := make([]*summaryRow, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, &summaryRow{
			Category:     string(c.Category),
			Title:        c.Title,
			Total:        c.Total,
			Compliant:    c.Verdicts[domain.Compliant],
			NonCompliant: c.Verdicts[domain.NonCompliant],
			Caution:      c.Verdicts[domain.Caution],
			Exceeds:      c.Verdicts[domain.Exceeds],
			Unknown:      c.Verdicts[domain.Unknown],
		})
	}
	return rows
}

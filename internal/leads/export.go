package leads

import (
	"encoding/csv"
	"io"
	"strconv"
)

// ExportFilename is the attachment name used by the export endpoint.
const ExportFilename = "leads_inmobiliaria.csv"

const exportTimeLayout = "2006-01-02 15:04:05"

// exportHeader is in the operator's language.
var exportHeader = []string{
	"ID",
	"Nombre",
	"WhatsApp",
	"Operación",
	"Inmueble",
	"Zona",
	"Presupuesto",
	"Financiamiento",
	"Clasificación",
	"Plazo",
	"Estado",
	"Fecha",
}

// WriteCSV renders leads as CSV with a header row, one row per lead in the
// given order. Fields containing commas, quotes or newlines are quoted.
func WriteCSV(w io.Writer, leads []*Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, l := range leads {
		row := []string{
			strconv.FormatInt(l.ID, 10),
			l.Name,
			l.WhatsApp,
			l.Operation,
			l.PropertyType,
			l.Zone,
			l.Budget,
			l.Financing,
			string(l.Classification),
			l.Timeline,
			string(l.Status),
			l.CreatedAt.UTC().Format(exportTimeLayout),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

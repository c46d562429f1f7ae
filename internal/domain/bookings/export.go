package bookings

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"petcare-client/internal/platform/money"
)

const exportSheet = "Reservas"

// Names resuelve ids a nombres para el export; lo que falta sale como "#id".
type Names struct {
	Services map[int64]string
	Users    map[int64]string
	Pets     map[int64]string
}

func (n Names) lookup(m map[int64]string, id int64) string {
	if v, ok := m[id]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return "#" + strconv.FormatInt(id, 10)
}

var exportHeaders = []string{
	"ID", "Servicio", "Dueño", "Prestador", "Mascotas",
	"Desde", "Hasta", "Estado", "Base", "Comisión", "Total",
}

// Export escribe las reservas como planilla .xlsx en w (historial del
// prestador o comprobantes del dueño). La última fila suma los montos de
// las reservas completadas.
func Export(w io.Writer, list []Booking, names Names) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", exportSheet)

	header, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("export style: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
		f.SetCellStyle(exportSheet, cell, cell, header)
	}

	var base, fee, total money.Amount
	for i, b := range list {
		row := i + 2
		pets := make([]string, len(b.Pets))
		for j, id := range b.Pets {
			pets[j] = names.lookup(names.Pets, id)
		}

		values := []any{
			b.ID,
			names.lookup(names.Services, b.Service),
			names.lookup(names.Users, b.Owner),
			names.lookup(names.Users, b.Provider),
			strings.Join(pets, ", "),
			b.StartDate.String(),
			b.EndDate.String(),
			b.Status.Label(),
			b.BasePrice.Round().Float(),
			b.PlatformFee.Round().Float(),
			b.TotalPrice.Round().Float(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheet, cell, v)
		}

		if b.Status == StatusCompleted {
			base += b.BasePrice.Round()
			fee += b.PlatformFee.Round()
			total += b.TotalPrice.Round()
		}
	}

	sumRow := len(list) + 2
	f.SetCellValue(exportSheet, fmt.Sprintf("H%d", sumRow), "Total completadas")
	f.SetCellValue(exportSheet, fmt.Sprintf("I%d", sumRow), base.Round().Float())
	f.SetCellValue(exportSheet, fmt.Sprintf("J%d", sumRow), fee.Round().Float())
	f.SetCellValue(exportSheet, fmt.Sprintf("K%d", sumRow), total.Round().Float())

	f.SetColWidth(exportSheet, "A", "A", 8)
	f.SetColWidth(exportSheet, "B", "E", 22)
	f.SetColWidth(exportSheet, "F", "H", 14)
	f.SetColWidth(exportSheet, "I", "K", 12)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export write: %w", err)
	}
	return nil
}

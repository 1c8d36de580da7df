// handlers/export.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"

	"buildhub/config"
	"buildhub/estimate"
	"buildhub/models"
)

// ExportEstimateWorkbook renders a submitted estimate's structured
// breakdown as an Excel download.
func ExportEstimateWorkbook(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	estimateID := vars["id"]
	contractorID := queryInt(r, "contractor_id")
	if contractorID <= 0 {
		respondFail(w, "Missing contractor_id")
		return
	}

	var est models.Estimate
	if err := config.DB.Where("id = ? AND contractor_id = ?", estimateID, contractorID).
		First(&est).Error; err != nil {
		http.Error(w, "Estimate not found", http.StatusNotFound)
		return
	}

	excelFile, err := createEstimateWorkbook(&est)
	if err != nil {
		http.Error(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}

	buffer, err := excelFile.WriteToBuffer()
	if err != nil {
		http.Error(w, "Failed to write Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("estimate_%d_%s.xlsx", est.ID, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))

	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

func createEstimateWorkbook(est *models.Estimate) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Estimate"
	f.SetSheetName("Sheet1", sheet)

	var structured map[string]interface{}
	if len(est.Structured) > 0 {
		if err := json.Unmarshal(est.Structured, &structured); err != nil {
			return nil, err
		}
	}
	str := func(key string) string {
		if s, ok := structured[key].(string); ok {
			return s
		}
		return ""
	}

	row := 1
	writeRow := func(values ...interface{}) {
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	writeRow("Project", str("project_name"))
	writeRow("Client", str("client_name"))
	writeRow("Address", str("project_address"))
	writeRow("Plot Size", str("plot_size"))
	writeRow("Built-up Area", str("built_up_area"))
	writeRow("Date", str("estimation_date"))
	row++

	for _, section := range estimate.Sections {
		items, ok := structured[section].(map[string]interface{})
		if !ok || len(items) == 0 {
			continue
		}
		writeRow(section)
		writeRow("Item", "Qty", "Rate", "Amount")

		keys := make([]string, 0, len(items))
		for k := range items {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			item, ok := items[k].(map[string]interface{})
			if !ok {
				continue
			}
			field := func(name string) string {
				if s, ok := item[name].(string); ok {
					return s
				}
				return ""
			}
			label := field("name")
			if label == "" {
				label = k
			}
			writeRow(label, field("qty"), field("rate"), field("amount"))
		}
		row++
	}

	if totals, ok := structured["totals"].(map[string]interface{}); ok {
		writeRow("Totals")
		for _, section := range estimate.Sections {
			if v, ok := totals[section].(string); ok && v != "" {
				writeRow(section, v)
			}
		}
		if grand, ok := totals["grand"].(string); ok && grand != "" {
			writeRow("Grand Total", grand)
		}
	} else if est.TotalCost != nil {
		writeRow("Grand Total", est.TotalCost.String())
	}

	if est.Timeline != nil {
		writeRow("Timeline", *est.Timeline)
	}
	return f, nil
}

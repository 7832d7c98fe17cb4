// Package services agrupa utilidades compartidas por los controladores.
package services

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// WriteCSV escribe un CSV descargable. Antepone el BOM UTF-8 para que
// Excel reconozca los acentos.
func WriteCSV(c *gin.Context, filename string, header []string, rows [][]string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	if _, err := c.Writer.WriteString("\xEF\xBB\xBF"); err != nil {
		return
	}
	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(header); err != nil {
		return
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return
		}
	}
	writer.Flush()
}

// WriteExcel genera un libro con una hoja, cabecera en negrita y columnas
// ensanchadas.
func WriteExcel(c *gin.Context, filename, sheet string, header []string, rows [][]any) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo generar el archivo"})
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for col, title := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
		f.SetCellStyle(sheet, cell, cell, boldStyle)

		name, _ := excelize.ColumnNumberToName(col + 1)
		f.SetColWidth(sheet, name, name, 22)
	}
	for r, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		return
	}
}

package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// ExportHandler serves generated Excel files
type ExportHandler struct {
	exportsDir string
}

// NewExportHandler creates a new ExportHandler instance
func NewExportHandler(exportsDir string) *ExportHandler {
	return &ExportHandler{exportsDir: exportsDir}
}

// DownloadExport handles GET /api/v1/export/:filename
// @Summary Download an exported Excel file
// @Description Download a previously generated promotion spreadsheet
// @Tags export
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param filename path string true "Excel filename"
// @Success 200 {file} binary "Excel file"
// @Failure 400 {object} map[string]interface{} "success: false, error: error message"
// @Failure 404 {object} map[string]interface{} "success: false, error: error message"
// @Router /api/v1/export/{filename} [get]
func (h *ExportHandler) DownloadExport(c *gin.Context) {
	filename := c.Param("filename")

	// Reject traversal attempts before touching the filesystem.
	if filename != filepath.Base(filename) || strings.Contains(filename, "..") || !strings.HasSuffix(filename, ".xlsx") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid filename",
		})
		return
	}

	filePath := filepath.Join(h.exportsDir, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "File not found",
		})
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")
	c.Header("Cache-Control", "must-revalidate")
	c.Header("Pragma", "public")

	c.File(filePath)
}

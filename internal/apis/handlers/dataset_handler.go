package handlers

import (
	"datachat-ai/internal/apis/dtos"
	"datachat-ai/internal/services"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type DatasetHandler struct {
	datasetService services.DatasetService
}

func NewDatasetHandler(datasetService services.DatasetService) *DatasetHandler {
	return &DatasetHandler{datasetService: datasetService}
}

// @Summary Upload a dataset
// @Description Upload a CSV or XLSX file as a queryable dataset
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Dataset file (csv or xlsx)"
// @Param numeric_columns formData string false "Comma-separated columns to coerce to numeric"
// @Success 200 {object} dtos.Response

func (h *DatasetHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		errorMsg := "missing file in request"
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	var declaredNumeric []string
	if raw := c.PostForm("numeric_columns"); raw != "" {
		for _, col := range strings.Split(raw, ",") {
			if col = strings.TrimSpace(col); col != "" {
				declaredNumeric = append(declaredNumeric, col)
			}
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		errorMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}
	defer file.Close()

	response, statusCode, err := h.datasetService.Upload(c.Request.Context(), fileHeader.Filename, file, declaredNumeric)
	if err != nil {
		errorMsg := err.Error()
		c.JSON(int(statusCode), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(int(statusCode), dtos.Response{
		Success: true,
		Data:    response,
	})
}

// @Summary List datasets
// @Description List all loaded datasets with their schemas

func (h *DatasetHandler) List(c *gin.Context) {
	response, statusCode, err := h.datasetService.List()
	if err != nil {
		errorMsg := err.Error()
		c.JSON(int(statusCode), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(int(statusCode), dtos.Response{
		Success: true,
		Data:    response,
	})
}

// @Summary Delete a dataset
// @Description Remove a dataset and its index from memory

func (h *DatasetHandler) Delete(c *gin.Context) {
	statusCode, err := h.datasetService.Delete(c.Param("name"))
	if err != nil {
		errorMsg := err.Error()
		c.JSON(int(statusCode), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(int(statusCode), dtos.Response{
		Success: true,
		Data:    "Dataset deleted",
	})
}

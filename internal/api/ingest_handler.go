package api

import (
	"errors"
	"net/http"

	"LocationSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// IngestHandler 手动触发接口。与目录监听共用同一个IngestService，
// 在途文件去重对两个入口同时生效。
type IngestHandler struct {
	ingestService *service.IngestService
	logger        *logrus.Logger
}

func NewIngestHandler(ingestService *service.IngestService, logger *logrus.Logger) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		logger:        logger,
	}
}

// ScanHandler 立即扫描监听目录并处理全部存量工作簿
// @Summary 手动触发目录扫描
// @Success 200 {object} map[string]int
// @Failure 500 {object} map[string]string
// @Router /ingest/scan [post]
func (h *IngestHandler) ScanHandler(c *gin.Context) {
	processed, err := h.ingestService.ScanFolder(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("目录扫描失败")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"files_processed": processed,
	})
}

// IngestFileHandler 处理指定路径的单个工作簿
// @Summary 手动触发单文件入库
// @Param body body object true "{\"path\": \"...\"}"
// @Success 200 {object} model.FileResult
// @Failure 500 {object} map[string]string
// @Router /ingest/file [post]
func (h *IngestHandler) IngestFileHandler(c *gin.Context) {
	var req struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}
	result, err := h.ingestService.ProcessFile(c.Request.Context(), req.Path)
	if err != nil {
		if errors.Is(err, service.ErrFileBusy) {
			c.JSON(http.StatusConflict, gin.H{
				"error": err.Error(),
			})
			return
		}
		h.logger.WithError(err).Errorf("处理文件失败: %s", req.Path)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": result.Status(),
		"result": result,
	})
}

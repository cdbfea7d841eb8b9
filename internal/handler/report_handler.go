package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamkhs/ProjectManagement/internal/logic"
	"github.com/iamkhs/ProjectManagement/internal/policy"
	"gorm.io/gorm"
)

// ReportHandler 报表处理器
type ReportHandler struct {
	reportLogic *logic.ReportLogic
}

// NewReportHandler 创建报表处理器
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{
		reportLogic: logic.NewReportLogic(db),
	}
}

// GenerateProjectReport 生成项目绩效报表
func (h *ReportHandler) GenerateProjectReport(c *gin.Context) {
	actor := CurrentUser(c)
	if !Authorize(c, policy.ReportGenerate(actor)) {
		return
	}

	filters, ok := h.bindFilters(c)
	if !ok {
		return
	}

	report, err := h.reportLogic.GenerateProjectReport(filters)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportProjectReport 导出项目绩效报表为CSV附件
func (h *ReportHandler) ExportProjectReport(c *gin.Context) {
	actor := CurrentUser(c)
	if !Authorize(c, policy.ReportExport(actor)) {
		return
	}

	filters, ok := h.bindFilters(c)
	if !ok {
		return
	}

	report, err := h.reportLogic.GenerateProjectReport(filters)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	fileName := fmt.Sprintf("project-report-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Status(http.StatusOK)

	if err := report.WriteCSV(c.Writer); err != nil {
		// 响应头已写出，只能记录
		_ = c.Error(err)
	}
}

// bindFilters 解析并校验报表过滤参数
func (h *ReportHandler) bindFilters(c *gin.Context) (logic.ReportFilters, bool) {
	var query ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return logic.ReportFilters{}, false
	}

	filters := logic.ReportFilters{ProjectID: query.ProjectID}

	if query.StartDate != "" {
		start, err := time.Parse("2006-01-02", query.StartDate)
		if err != nil {
			ErrorResponse(c, http.StatusUnprocessableEntity, "Invalid start_date.")
			return logic.ReportFilters{}, false
		}
		filters.StartDate = &start
	}

	if query.EndDate != "" {
		end, err := time.Parse("2006-01-02", query.EndDate)
		if err != nil {
			ErrorResponse(c, http.StatusUnprocessableEntity, "Invalid end_date.")
			return logic.ReportFilters{}, false
		}
		filters.EndDate = &end
	}

	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		ErrorResponse(c, http.StatusUnprocessableEntity, "end_date must be after start_date.")
		return logic.ReportFilters{}, false
	}

	return filters, true
}

package api

import (
	"log"
	"time"

	"fintrack/config"
	"fintrack/database"
	"fintrack/engine"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// AlertHandler 预算预警处理器
type AlertHandler struct {
	emailService *service.EmailService
}

// NewAlertHandler 创建预算预警处理器
func NewAlertHandler(cfg *config.Config) *AlertHandler {
	return &AlertHandler{
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// GetAlerts 获取预算预警
// @Summary 获取预算预警
// @Description 将当前月份（或指定月份）的消费与预算分配对比，消费超过分配金额 80% 的类别触发预警。不指定预算时使用最近更新的预算。
// @Tags 预警
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param budget_id query int false "预算ID，不传则使用当前预算"
// @Param year_month query string false "统计月份 (2024-01)，不传则为当前月"
// @Param notify query string false "通知方式，email 表示发送邮件提醒"
// @Success 200 {object} Response "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/alerts [get]
func (h *AlertHandler) GetAlerts(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	// 确定预算：指定 ID 或当前预算（最近更新的一份）
	var budget models.Budget
	if budgetID := c.Query("budget_id"); budgetID != "" {
		if err := database.DB.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
			NotFound(c, "预算不存在")
			return
		}
	} else {
		if err := database.DB.Where("user_id = ?", userID).Order("updated_at DESC").First(&budget).Error; err != nil {
			NotFound(c, "尚未设置预算")
			return
		}
	}

	// 确定统计月份，缺省为当前月
	monthStart := time.Date(time.Now().Year(), time.Now().Month(), 1, 0, 0, 0, 0, time.Local)
	if ym := c.Query("year_month"); ym != "" {
		t, err := time.ParseInLocation("2006-01", ym, time.Local)
		if err != nil {
			BadRequest(c, "月份格式错误，应为: 2006-01")
			return
		}
		monthStart = t
	}
	monthEnd := monthStart.AddDate(0, 1, 0)

	var expenses []models.Expense
	if err := database.DB.Where("user_id = ? AND expense_time >= ? AND expense_time < ?",
		userID, monthStart, monthEnd).Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	spend, err := engine.SummarizeByCategory(expenses)
	if err != nil {
		BadRequest(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	alerts := engine.EvaluateAlerts(budget.Allocation, spend)

	// 按需发送邮件提醒，失败不影响接口返回
	if c.Query("notify") == "email" && len(alerts) > 0 {
		var user models.User
		if err := database.DB.First(&user, userID).Error; err == nil && user.Email != "" {
			if err := h.emailService.SendBudgetAlertEmail(user.Email, user.Username, alerts); err != nil {
				log.Printf("发送预警邮件失败: %v", err)
			}
		}
	}

	Success(c, gin.H{
		"budget_id":      budget.ID,
		"budget_name":    budget.Name,
		"year_month":     monthStart.Format("2006-01"),
		"alerts":         alerts,
		"category_spend": spend,
	})
}

package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"fintrack/config"
	"fintrack/database"
	"fintrack/engine"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BudgetHandler 预算处理器
type BudgetHandler struct {
	cfg *config.Config
}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler(cfg *config.Config) *BudgetHandler {
	return &BudgetHandler{cfg: cfg}
}

// UpsertBudgetRequest 保存预算请求
// 带 id 时更新对应预算；否则按名称匹配已有预算，匹配不到则新建。
type UpsertBudgetRequest struct {
	ID          uint               `json:"id" example:"1"`
	Name        string             `json:"name" example:"月度预算"`
	TotalAmount float64            `json:"total_amount" binding:"required,gt=0" example:"5000"`
	Allocation  map[string]float64 `json:"allocation"`
}

// ProportionalAllocateRequest 按历史消费比例分配请求
type ProportionalAllocateRequest struct {
	TotalBudget float64 `json:"total_budget" binding:"required,gt=0" example:"5000"`
	StartTime   string  `json:"start_time" example:"2024-01-01"`
	EndTime     string  `json:"end_time" example:"2024-03-31"`
	Save        bool    `json:"save" example:"true"` // 是否将结果保存为预算
	Name        string  `json:"name" example:"月度预算"`
}

// AIAllocateRequest AI 预算分配请求
type AIAllocateRequest struct {
	ModelID     uint     `json:"model_id" binding:"required" example:"1"`
	TotalBudget float64  `json:"total_budget" binding:"required,gt=0" example:"5000"`
	Lookback    string   `json:"lookback" binding:"required" example:"3months"` // 1month/3months/6months/1year
	Categories  []string `json:"categories"`                                    // 不传则取窗口内消费类别，无消费时退回推荐类别
	Save        bool     `json:"save" example:"true"`
	Name        string   `json:"name" example:"AI预算"`
}

// Upsert 保存预算
// @Summary 保存预算
// @Description 创建或更新预算。带 id 时更新对应预算；否则按名称匹配已有预算，匹配不到则新建。各类别分配金额之和不得超过总预算。
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpsertBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "保存成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) Upsert(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req UpsertBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if msg := validateAllocation(req.TotalAmount, req.Allocation); msg != "" {
		BadRequest(c, msg)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = models.DefaultBudgetName
	}
	allocation := models.AllocationMap(req.Allocation)
	if allocation == nil {
		allocation = models.AllocationMap{}
	}

	var budget models.Budget
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if req.ID > 0 {
			// 按 id 更新，必须归属当前用户
			if err := tx.Where("id = ? AND user_id = ?", req.ID, userID).First(&budget).Error; err != nil {
				return err
			}
		} else if err := tx.Where("user_id = ? AND name = ?", userID, name).First(&budget).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			// 新建
			budget = models.Budget{
				UserID:      userID,
				Name:        name,
				TotalAmount: req.TotalAmount,
				Allocation:  allocation,
			}
			return tx.Create(&budget).Error
		}

		budget.Name = name
		budget.TotalAmount = req.TotalAmount
		budget.Allocation = allocation
		return tx.Save(&budget).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "预算不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "保存预算失败"))
		return
	}

	SuccessWithMessage(c, "保存成功", budget)
}

// List 获取预算列表
// @Summary 获取预算列表
// @Description 获取当前用户的全部预算，更新时间最新的一份为当前预算
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var budgets []models.Budget
	if err := database.DB.Where("user_id = ?", userID).Order("updated_at DESC").Find(&budgets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var current *models.Budget
	if len(budgets) > 0 {
		current = &budgets[0]
	}

	Success(c, gin.H{
		"current": current,
		"list":    budgets,
	})
}

// Delete 删除预算
// @Summary 删除预算
// @Description 删除指定的预算
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算不存在")
		return
	}

	if err := database.DB.Delete(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// AllocateProportional 按历史消费比例分配预算
// @Summary 按历史消费比例分配预算
// @Description 按指定时间范围内各类别的消费占比分配总预算，金额保留两位小数且合计严格等于总预算。窗口内无有效消费时返回 400，提示手动分配。
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProportionalAllocateRequest true "分配参数"
// @Success 200 {object} Response "分配成功"
// @Failure 400 {object} Response "请求参数错误或历史数据不足"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets/allocate/proportional [post]
func (h *BudgetHandler) AllocateProportional(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ProportionalAllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	expenses, err := queryExpensesInRange(userID, req.StartTime, req.EndTime)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	spend, err := engine.SummarizeByCategory(expenses)
	if err != nil {
		BadRequest(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	allocation, err := engine.AllocateProportional(req.TotalBudget, spend)
	if err != nil {
		if errors.Is(err, engine.ErrInsufficientHistory) {
			BadRequest(c, "该时间范围内没有消费记录，无法按比例分配，请手动设置预算分配")
			return
		}
		BadRequest(c, SafeErrorMessage(err, "分配失败"))
		return
	}

	resp := gin.H{
		"total_budget":   req.TotalBudget,
		"allocation":     allocation,
		"category_spend": spend,
	}

	if req.Save {
		budget, err := h.saveAllocation(userID, req.Name, req.TotalBudget, allocation)
		if err != nil {
			InternalError(c, SafeErrorMessage(err, "保存预算失败"))
			return
		}
		resp["budget"] = budget
	}

	Success(c, resp)
}

// AllocateAI AI 预算分配
// @Summary AI 预算分配
// @Description 调用配置的 AI 模型生成预算分配建议。AI 服务不可用时仍返回 200，分配金额全部为 0 并提示稍后重试，此时结果不会保存。
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AIAllocateRequest true "分配参数"
// @Success 200 {object} Response "分配成功（或已降级）"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "模型不存在"
// @Router /api/v1/budgets/allocate/ai [post]
func (h *BudgetHandler) AllocateAI(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req AIAllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	lookback := engine.Lookback(req.Lookback)
	if !lookback.Valid() {
		BadRequest(c, "不支持的时间窗口，可选: 1month/3months/6months/1year")
		return
	}

	var model models.AIModel
	if err := database.DB.First(&model, req.ModelID).Error; err != nil {
		NotFound(c, "模型不存在")
		return
	}

	// 取窗口内的历史消费作为提示词上下文
	now := time.Now()
	start := now.AddDate(0, -lookback.Months(), 0)
	var expenses []models.Expense
	if err := database.DB.Where("user_id = ? AND expense_time >= ?", userID, start).
		Order("expense_time ASC").Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	spend, err := engine.SummarizeByCategory(expenses)
	if err != nil {
		BadRequest(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	categories := req.Categories
	if len(categories) == 0 {
		for category := range spend {
			categories = append(categories, category)
		}
	}
	if len(categories) == 0 {
		// 窗口内无消费时退回推荐类别
		categories = models.GetDefaultCategories()
	}

	allocator := service.NewAIAllocator(model, time.Duration(h.cfg.AI.TimeoutSeconds)*time.Second)
	allocation, err := allocator.RequestAllocation(c.Request.Context(), service.AllocationRequest{
		TotalBudget:   req.TotalBudget,
		Categories:    categories,
		Lookback:      lookback,
		CategorySpend: spend,
	})
	if err != nil {
		var ve *engine.ValidationError
		if errors.As(err, &ve) {
			BadRequest(c, ve.Reason)
			return
		}
		if errors.Is(err, engine.ErrAIUnavailable) {
			// 降级：返回全 0 分配并提示重试，不保存结果
			zero := make(map[string]float64, len(categories))
			for _, category := range categories {
				zero[category] = 0
			}
			SuccessWithMessage(c, "AI 服务暂时不可用，请稍后重试", gin.H{
				"total_budget": req.TotalBudget,
				"allocation":   zero,
				"degraded":     true,
			})
			return
		}
		InternalError(c, SafeErrorMessage(err, "分配失败"))
		return
	}

	resp := gin.H{
		"total_budget": req.TotalBudget,
		"allocation":   allocation,
		"degraded":     false,
	}

	if req.Save {
		budget, err := h.saveAllocation(userID, req.Name, req.TotalBudget, allocation)
		if err != nil {
			InternalError(c, SafeErrorMessage(err, "保存预算失败"))
			return
		}
		resp["budget"] = budget
	}

	Success(c, resp)
}

// saveAllocation 将分配结果保存为预算（按名称匹配已有预算，匹配不到则新建）
func (h *BudgetHandler) saveAllocation(userID uint, name string, total float64, allocation map[string]float64) (*models.Budget, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = models.DefaultBudgetName
	}

	var budget models.Budget
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND name = ?", userID, name).First(&budget).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			budget = models.Budget{
				UserID:      userID,
				Name:        name,
				TotalAmount: total,
				Allocation:  models.AllocationMap(allocation),
			}
			return tx.Create(&budget).Error
		}
		budget.TotalAmount = total
		budget.Allocation = models.AllocationMap(allocation)
		return tx.Save(&budget).Error
	})
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// validateAllocation 校验分配表：金额非负，合计不超过总预算（容忍每类别 1 分钱的舍入误差）
func validateAllocation(total float64, allocation map[string]float64) string {
	var sum float64
	for category, amount := range allocation {
		if strings.TrimSpace(category) == "" {
			return "类别名称不能为空"
		}
		if amount < 0 {
			return "类别 " + category + " 的分配金额不能为负数"
		}
		sum += amount
	}
	if sum > total+0.01*float64(len(allocation)) {
		return "各类别分配金额之和不能超过总预算"
	}
	return ""
}

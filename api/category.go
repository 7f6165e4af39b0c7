package api

import (
	"strings"

	"fintrack/database"
	"fintrack/models"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 推荐类别处理器
type CategoryHandler struct{}

// NewCategoryHandler 创建推荐类别处理器
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CreateCategoryRequest 创建推荐类别请求
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required,max=50" example:"宠物"`
	Color string `json:"color" example:"#f97316"`
	Sort  int    `json:"sort" example:"10"`
}

// List 获取推荐类别列表
// @Summary 获取推荐类别列表
// @Description 获取录入消费时的候选类别列表。消费记录的类别为自由文本，不强制来自此列表。
// @Tags 类别
// @Accept json
// @Produce json
// @Success 200 {object} Response{data=[]models.ExpenseCategory} "获取成功"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	var categories []models.ExpenseCategory
	if err := database.DB.Order("sort ASC, id ASC").Find(&categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, categories)
}

// Create 创建推荐类别
// @Summary 创建推荐类别
// @Description 向候选类别列表中添加一个新类别
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.ExpenseCategory} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "类别名称不能为空")
		return
	}

	// 检查是否已存在
	var existing models.ExpenseCategory
	if err := database.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		BadRequest(c, "类别已存在")
		return
	}

	category := models.ExpenseCategory{
		Name:  req.Name,
		Color: req.Color,
		Sort:  req.Sort,
	}
	if category.Color == "" {
		category.Color = "#64748b"
	}

	if err := database.DB.Create(&category).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建类别失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", category)
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func budgetRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "total_amount", "allocation", "created_at", "updated_at", "deleted_at"})
}

func testBudgetConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		AI:     config.AIConfig{TimeoutSeconds: 5},
	}
}

func TestBudgetHandler_Upsert_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)

	// 事务内先按 user_id + name 查找，无记录则插入
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1), "月度预算").
		WillReturnRows(budgetRows())
	mock.ExpectExec("INSERT INTO `budgets`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets", NewBudgetHandler(testBudgetConfig()).Upsert)

	body := `{"name":"月度预算","total_amount":5000,"allocation":{"餐饮":2000,"交通":800}}`
	req := httptest.NewRequest("POST", "/budgets", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "保存成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Upsert_AllocationExceedsTotal(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets", NewBudgetHandler(testBudgetConfig()).Upsert)

	body := `{"total_amount":1000,"allocation":{"餐饮":800,"交通":500}}`
	req := httptest.NewRequest("POST", "/budgets", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "各类别分配金额之和不能超过总预算", resp["message"])
}

func TestBudgetHandler_Upsert_NegativeAllocation(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets", NewBudgetHandler(testBudgetConfig()).Upsert)

	body := `{"total_amount":1000,"allocation":{"餐饮":-10}}`
	req := httptest.NewRequest("POST", "/budgets", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestBudgetHandler_Delete_NotOwned(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WillReturnRows(budgetRows())

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/budgets/:id", NewBudgetHandler(testBudgetConfig()).Delete)

	req := httptest.NewRequest("DELETE", "/budgets/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_AllocateProportional(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(uint(1)).
		WillReturnRows(expenseRows().
			AddRow(1, 1, 300.0, "餐饮", "", now, now, now, nil).
			AddRow(2, 1, 100.0, "交通", "", now, now, now, nil))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets/allocate/proportional", NewBudgetHandler(testBudgetConfig()).AllocateProportional)

	body := `{"total_budget":400}`
	req := httptest.NewRequest("POST", "/budgets/allocate/proportional", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	allocation := data["allocation"].(map[string]interface{})
	assert.InDelta(t, 300.0, allocation["餐饮"], 0.001)
	assert.InDelta(t, 100.0, allocation["交通"], 0.001)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_AllocateProportional_NoHistory(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(uint(1)).
		WillReturnRows(expenseRows())

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets/allocate/proportional", NewBudgetHandler(testBudgetConfig()).AllocateProportional)

	body := `{"total_budget":400}`
	req := httptest.NewRequest("POST", "/budgets/allocate/proportional", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "手动")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_AllocateAI_Degraded(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 指向一个已关闭的服务，模拟 AI 服务不可用
	server := httptest.NewServer(nil)
	baseURL := server.URL
	server.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `ai_models`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "base_url", "api_key", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, "gpt-test", baseURL, "sk-test", now, now, nil))
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows().
			AddRow(1, 1, 300.0, "餐饮", "", now, now, now, nil))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets/allocate/ai", NewBudgetHandler(testBudgetConfig()).AllocateAI)

	body := `{"model_id":1,"total_budget":5000,"lookback":"3months"}`
	req := httptest.NewRequest("POST", "/budgets/allocate/ai", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 降级：仍返回 200，分配全 0 并提示重试
	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "稍后重试")
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["degraded"])
	allocation := data["allocation"].(map[string]interface{})
	assert.InDelta(t, 0.0, allocation["餐饮"], 0.001)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_AllocateAI_InvalidLookback(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets/allocate/ai", NewBudgetHandler(testBudgetConfig()).AllocateAI)

	body := `{"model_id":1,"total_budget":5000,"lookback":"2weeks"}`
	req := httptest.NewRequest("POST", "/budgets/allocate/ai", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

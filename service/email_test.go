package service

import (
	"strings"
	"testing"

	"fintrack/config"

	"github.com/stretchr/testify/assert"
)

func newTestEmailService() *EmailService {
	return NewEmailService(&config.EmailConfig{})
}

func TestSendBudgetAlertEmail_Disabled(t *testing.T) {
	s := newTestEmailService()
	err := s.SendBudgetAlertEmail("user@example.com", "张三", map[string]string{
		"餐饮": "Warning! You have spent 900 out of 1000 in 餐饮.",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "邮件服务未启用")
}

func TestGenerateAlertEmailBody(t *testing.T) {
	s := newTestEmailService()
	body := s.generateAlertEmailBody("张三", map[string]string{
		"餐饮": "Warning! You have spent 900 out of 1000 in 餐饮.",
		"交通": "Warning! You have spent 280 out of 300 in 交通.",
	})
	assert.Contains(t, body, "张三")
	assert.Contains(t, body, "Warning! You have spent 900 out of 1000 in 餐饮.")
	assert.Contains(t, body, "Warning! You have spent 280 out of 300 in 交通.")
	assert.Contains(t, body, "80%")

	// 内容按类别名排序，交通在餐饮之前
	assert.Less(t, strings.Index(body, "交通"), strings.Index(body, "餐饮"))
}

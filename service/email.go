package service

import (
	"fmt"
	"sort"
	"strings"

	"fintrack/config"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务，负责投递预算超支预警
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendBudgetAlertEmail 发送超支预警邮件
// alerts 为 类别 -> 预警文案 的映射，为空时不发送
func (s *EmailService) SendBudgetAlertEmail(toEmail, username string, alerts map[string]string) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请配置 FINTRACK_EMAIL_ENABLED=true")
	}
	if len(alerts) == 0 {
		return nil
	}

	subject := "【记账系统】预算超支预警"
	body := s.generateAlertEmailBody(username, alerts)

	return s.sendEmail(toEmail, subject, body)
}

// generateAlertEmailBody 生成预警邮件内容
func (s *EmailService) generateAlertEmailBody(username string, alerts map[string]string) string {
	// 按类别名排序，保证邮件内容稳定
	categories := make([]string, 0, len(alerts))
	for category := range alerts {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var items strings.Builder
	for _, category := range categories {
		fmt.Fprintf(&items, `<li><strong>%s</strong>：%s</li>`+"\n", category, alerts[category])
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #ef4444, #dc2626); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .content ul { color: #333; line-height: 2; padding-left: 20px; }
        .warning { background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0; border-radius: 4px; }
        .warning p { margin: 0; color: #856404; font-size: 14px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>💰 记账系统</h1>
        </div>
        <div class="content">
            <p>尊敬的 <strong>%s</strong>，您好！</p>
            <p>以下类别的消费已接近或超过预算分配，请注意控制支出：</p>
            <ul>
%s            </ul>
            <div class="warning">
                <p>⚠️ 预警阈值为预算分配的 80%%，超过即提醒。</p>
            </div>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
            <p>© 记账系统 - 您的个人财务管理助手</p>
        </div>
    </div>
</body>
</html>
`, username, items.String())
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}

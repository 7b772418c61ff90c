package config

type Config struct {
	Telegram TelegramConf `json:"telegram"`
	LLM      LlmConf      `json:"llm"`
	Journal  JournalConf  `json:"journal"`
}

type TelegramConf struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  string `json:"chat_id"`
}

type LlmConf struct {
	BaseURL  string `json:"base_url"`  // LLM API基础URL
	APIKey   string `json:"api_key"`   // LLM API密钥
	Model    string `json:"model"`     // 模型名称
	ProxyURL string `json:"proxy_url"` // 代理地址，例如: http://127.0.0.1:7890
}

type JournalConf struct {
	DigestCron string `json:"digest_cron"` // 每日总结推送的 cron 表达式，默认 0 22 * * *
}

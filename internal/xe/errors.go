package xe

import "github.com/go-orz/orz"

var (
	ErrInvalidParams = orz.NewError(10400, "参数无效")

	ErrTradeNotFound     = orz.NewError(10000, "交易记录不存在")
	ErrCsvNoRows         = orz.NewError(10001, "CSV 文件中没有可识别的交易记录")
	ErrInvalidBackup     = orz.NewError(10002, "备份文件格式不正确")
	ErrChecklistNotFound = orz.NewError(10003, "清单条目不存在")
	ErrCoachDisabled     = orz.NewError(10004, "AI 复盘功能未配置")
)

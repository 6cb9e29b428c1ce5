package mysql

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB 初始化 MySQL 连接。
// TranslateError 打开后，唯一键冲突会被翻译成 gorm.ErrDuplicatedKey，
// 预订去重依赖这个信号区分“已预订”和其他写失败。
func InitDB(dsn string) error {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}
	DB = db
	return nil
}

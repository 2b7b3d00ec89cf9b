package db

import "gorm.io/gorm"

// StorageEntry 存储整块序列化后的键值数据，每个键一行。
type StorageEntry struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (StorageEntry) TableName() string {
	return "storage_entries"
}

// StreamsStorageKey 保存直播记录集合的存储键。
const StreamsStorageKey = "stream-tracker-db-v1"

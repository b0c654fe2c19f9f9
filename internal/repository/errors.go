package repository

import (
	"strings"
)

// 瞬时争用特征：锁等待/死锁/序列化冲突，提交重试即可恢复
// 40001=serialization_failure 40P01=deadlock_detected 55P03=lock_not_available
var transientMarkers = []string{
	"SQLSTATE 40001",
	"SQLSTATE 40P01",
	"SQLSTATE 55P03",
	"deadlock detected",
	"could not obtain lock",
	"lock timeout",
	"connection reset by peer",
}

// IsTransient 判断提交错误是否为瞬时争用（可重试），其余一律视为致命错误
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"time"
)

// RetryPolicy 显式重试策略：在调用点显式套用（替代装饰器式的隐式重试），
// 只有Retriable判定为真的错误才重试，次数与间隔都有上限
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Retriable   func(error) bool
}

// Do 执行op，失败且可重试时最多尝试MaxAttempts次，相邻尝试之间等待Delay。
// 不可重试的错误、重试耗尽、或上下文取消，都原样返回最后一次错误。
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = op(); err == nil {
			return nil
		}
		if p.Retriable == nil || !p.Retriable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(p.Delay):
		}
	}
	return err
}

package application

import "time"

// SetClock 在测试中替换服务时钟。
func SetClock(s *WalletService, now func() time.Time) {
	s.now = now
}

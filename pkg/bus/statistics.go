package bus

import (
	"go.uber.org/zap"
)

type Statistics struct {
	PostCount     uint64 `json:"post_count"`
	DeferCount    uint64 `json:"defer_count"`
	PostFails     uint64 `json:"post_fails"`
	DispatchCount uint64 `json:"dispatch_count"`
	DispatchFails uint64 `json:"dispatch_fails"`
	MaxDepth      int    `json:"max_depth"`
}

func (s Statistics) Print(logger *zap.Logger) {
	logger.Info("router statistics",
		zap.Uint64("post_count", s.PostCount),
		zap.Uint64("defer_count", s.DeferCount),
		zap.Uint64("post_fails", s.PostFails),
		zap.Uint64("dispatch_count", s.DispatchCount),
		zap.Uint64("dispatch_fails", s.DispatchFails),
		zap.Int("max_depth", s.MaxDepth))
}

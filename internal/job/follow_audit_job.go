package job

import (
	"BrainShelf/internal/pkg/logger"
	"BrainShelf/internal/repository"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// FollowAuditJob 定期重建关注计数，修复历史数据或异常写入造成的漂移。
// 计数以数组内容为准。
type FollowAuditJob struct {
	userRepo repository.UserRepo
}

func NewFollowAuditJob(userRepo repository.UserRepo) *FollowAuditJob {
	return &FollowAuditJob{userRepo: userRepo}
}

func (s *FollowAuditJob) Run() {
	traceID := "job-follow-audit-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	modified, err := s.userRepo.ResyncFollowCounts(ctx)
	if err != nil {
		log.ErrorContext(ctx, "resync follow counts error", "err", err)
		return
	}

	log.InfoContext(ctx, "FollowAuditJob finished", "modified_count", modified)
}

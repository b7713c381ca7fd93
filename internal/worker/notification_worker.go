package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/gas-utility-service/internal/service"
)

// StartNotificationWorker registers notification handlers on the dispatcher.
// Handlers run inline with the publishing request; nothing is queued.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		logger.Warn("notification service not configured; events will not be delivered")
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification handlers registered")
}

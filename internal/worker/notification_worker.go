package worker

import (
	"go.uber.org/zap"

	"github.com/clinica/clinic-api/internal/config"
	"github.com/clinica/clinic-api/internal/events"
	"github.com/clinica/clinic-api/internal/service"
)

// StartNotificationWorker subscribes the notification service to appointment
// events. Delivery is synchronous, so nothing runs in the background yet.
func StartNotificationWorker(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *service.NotificationService {
	if dispatcher == nil {
		return nil
	}
	notifications := service.NewNotificationService(dispatcher, logger, cfg)
	notifications.RegisterHandlers()

	logger.Info("notification worker started",
		zap.Bool("email", cfg.EmailFrom != ""),
		zap.Bool("webhook", cfg.WebhookURL != ""))
	return notifications
}

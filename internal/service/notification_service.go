package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/clinica/clinic-api/internal/config"
	"github.com/clinica/clinic-api/internal/events"
)

const webhookTimeout = 5 * time.Second

// AppointmentNotice is the message rendered for an appointment event. It is
// the email body and the webhook JSON payload.
type AppointmentNotice struct {
	EventID       string    `json:"id_evento"`
	EventType     string    `json:"tipo"`
	AppointmentID int       `json:"id_cita"`
	PatientID     int       `json:"id_paciente"`
	DoctorID      int       `json:"id_doctor"`
	Date          string    `json:"fecha"`
	Time          string    `json:"hora"`
	Status        string    `json:"estado"`
	Cost          string    `json:"precio_costo"`
	Subject       string    `json:"asunto"`
	Body          string    `json:"mensaje"`
	OccurredAt    time.Time `json:"timestamp"`
}

var noticeSubjects = map[events.EventType]string{
	events.EventAppointmentBooked:    "Cita agendada",
	events.EventAppointmentUpdated:   "Cita actualizada",
	events.EventAppointmentCancelled: "Cita cancelada",
}

// BuildAppointmentNotice renders the notice for an event. The payload must be
// an events.AppointmentPayload.
func BuildAppointmentNotice(event events.Event) (AppointmentNotice, error) {
	payload, ok := event.Payload.(events.AppointmentPayload)
	if !ok {
		return AppointmentNotice{}, fmt.Errorf("event %s: unexpected payload %T", event.Type, event.Payload)
	}
	subject, ok := noticeSubjects[event.Type]
	if !ok {
		return AppointmentNotice{}, fmt.Errorf("event %s: no notice template", event.Type)
	}

	notice := AppointmentNotice{
		EventID:       event.ID,
		EventType:     string(event.Type),
		AppointmentID: event.AppointmentID,
		PatientID:     payload.PatientID,
		DoctorID:      payload.DoctorID,
		Date:          payload.Date.String(),
		Time:          payload.Time.String(),
		Status:        payload.Status,
		Cost:          payload.Cost.StringFixed(2),
		Subject:       fmt.Sprintf("%s #%d", subject, event.AppointmentID),
		OccurredAt:    event.Timestamp,
	}
	notice.Body = fmt.Sprintf("%s: paciente %d con doctor %d el %s a las %s. Estado: %s. Costo: %s.",
		subject, notice.PatientID, notice.DoctorID, notice.Date, notice.Time, notice.Status, notice.Cost)
	return notice, nil
}

// NotificationService reacts to appointment lifecycle events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAppointmentBooked, n.handleAppointmentBooked)
	n.dispatcher.Subscribe(events.EventAppointmentUpdated, n.handleAppointmentUpdated)
	n.dispatcher.Subscribe(events.EventAppointmentCancelled, n.handleAppointmentCancelled)
}

func (n *NotificationService) handleAppointmentBooked(ctx context.Context, event events.Event) error {
	return n.notify(ctx, event, true)
}

// Updates go to the webhook only.
func (n *NotificationService) handleAppointmentUpdated(ctx context.Context, event events.Event) error {
	return n.notify(ctx, event, false)
}

func (n *NotificationService) handleAppointmentCancelled(ctx context.Context, event events.Event) error {
	return n.notify(ctx, event, true)
}

func (n *NotificationService) notify(ctx context.Context, event events.Event, email bool) error {
	notice, err := BuildAppointmentNotice(event)
	if err != nil {
		return err
	}
	n.logger.Info(notice.Subject,
		zap.String("event_id", notice.EventID),
		zap.String("event_type", notice.EventType),
		zap.Int("id_cita", notice.AppointmentID))

	if email {
		n.sendEmail(ctx, notice)
	}
	return n.sendWebhook(ctx, notice)
}

// sendEmail has no mail transport; the rendered message goes to the log.
func (n *NotificationService) sendEmail(_ context.Context, notice AppointmentNotice) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Info("email notification",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int("id_paciente", notice.PatientID),
		zap.String("subject", notice.Subject),
		zap.String("body", notice.Body))
}

// sendWebhook POSTs the notice as JSON. Non-2xx responses are errors.
func (n *NotificationService) sendWebhook(_ context.Context, notice AppointmentNotice) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}
	agent := fiber.Post(url)
	agent.Set("X-Event-ID", notice.EventID)
	agent.JSON(notice)
	agent.Timeout(webhookTimeout)

	status, _, errs := agent.Bytes()
	if len(errs) > 0 {
		n.logger.Warn("webhook notification failed", zap.String("url", url), zap.Error(errs[0]))
		return fmt.Errorf("webhook %s: %w", url, errs[0])
	}
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		n.logger.Warn("webhook notification rejected", zap.String("url", url), zap.Int("status", status))
		return fmt.Errorf("webhook %s: status %d", url, status)
	}
	n.logger.Debug("webhook notification",
		zap.String("url", url),
		zap.Int("id_cita", notice.AppointmentID),
		zap.Int("status", status))
	return nil
}

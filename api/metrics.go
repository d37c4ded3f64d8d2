package api

import (
	"time"

	log "github.com/sirupsen/logrus"
)

type chatRequestMetrics struct {
	logger          *log.Logger
	start           time.Time
	processDuration time.Duration
	applyDuration   time.Duration
	messageLength   int
	actionKind      string
	errorStage      string
}

func newChatRequestMetrics(logger *log.Logger) *chatRequestMetrics {
	return &chatRequestMetrics{
		logger: logger,
		start:  time.Now(),
	}
}

func (m *chatRequestMetrics) ObserveProcess(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.processDuration = duration
}

func (m *chatRequestMetrics) ObserveApply(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.applyDuration = duration
}

func (m *chatRequestMetrics) SetMessageLength(length int) {
	if length < 0 {
		length = 0
	}
	m.messageLength = length
}

func (m *chatRequestMetrics) SetActionKind(kind string) {
	if kind == "" {
		return
	}
	m.actionKind = kind
}

func (m *chatRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *chatRequestMetrics) Log(status int, err error) {
	if m == nil || m.logger == nil {
		return
	}

	fields := log.Fields{
		"route":          "/api/chat",
		"status":         status,
		"total_ms":       durationToMillis(time.Since(m.start)),
		"message_length": m.messageLength,
	}

	if m.processDuration > 0 {
		fields["process_ms"] = durationToMillis(m.processDuration)
	}
	if m.applyDuration > 0 {
		fields["apply_ms"] = durationToMillis(m.applyDuration)
	}
	if m.actionKind != "" {
		fields["action"] = m.actionKind
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	m.logger.WithFields(fields).Info("chat.request.metrics")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}

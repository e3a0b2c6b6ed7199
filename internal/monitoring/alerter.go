package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/saransh482003/healthassist/internal/config"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertFinderFailureRate AlertType = "finder_failure_rate"
	AlertSymptomSpike      AlertType = "symptom_spike"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates a MetricsSnapshot against configured thresholds
// and sends alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (a *Alerter) Evaluate(snap *MetricsSnapshot) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	// Finder failure rate, once enough runs have finished to be meaningful.
	if snap.FinderRuns >= 5 && snap.FinderFailRate > a.cfg.FailureRateThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertFinderFailureRate,
			Severity: "high",
			Message: fmt.Sprintf(
				"Doctor finder failure rate %.1f%% exceeds threshold %.1f%% (%d failed / %d runs)",
				snap.FinderFailRate*100, a.cfg.FailureRateThreshold*100,
				snap.FinderFailed, snap.FinderRuns,
			),
			Details: map[string]any{
				"failure_rate": snap.FinderFailRate,
				"threshold":    a.cfg.FailureRateThreshold,
				"failed":       snap.FinderFailed,
				"runs":         snap.FinderRuns,
			},
			Timestamp: now,
		})
	}

	// Symptom spike: any single term logged above the threshold within
	// the window may indicate a local outbreak.
	if a.cfg.SymptomSpikeThreshold > 0 {
		for _, s := range snap.TopSymptoms {
			if s.Count >= a.cfg.SymptomSpikeThreshold {
				alerts = append(alerts, Alert{
					Type:     AlertSymptomSpike,
					Severity: "medium",
					Message: fmt.Sprintf(
						"Symptom %q logged %d times in last %dh (threshold %d)",
						s.SymptomTerm, s.Count, snap.LookbackHours, a.cfg.SymptomSpikeThreshold,
					),
					Details: map[string]any{
						"symptom":   s.SymptomTerm,
						"count":     s.Count,
						"threshold": a.cfg.SymptomSpikeThreshold,
					},
					Timestamp: now,
				})
			}
		}
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}

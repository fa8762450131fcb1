package services

import (
	"fmt"
	"time"

	"supertube/internal/models"
	"supertube/internal/providers"
	"supertube/internal/structures"
)

// AlertManager evaluates configured threshold rules against fresh
// snapshots.
type AlertManager struct {
	rules  []structures.AlertRule
	logger providers.Logger
	now    func() time.Time
}

func NewAlertManager(conf *structures.Config, logger providers.Logger) *AlertManager {
	return &AlertManager{
		rules:  conf.Alerts,
		logger: logger,
		now:    time.Now,
	}
}

// Evaluate runs every enabled rule against the channel snapshot and
// returns the alerts that fired. Rules with an unknown metric are
// logged and skipped rather than failing the refresh.
func (m *AlertManager) Evaluate(ch *models.Channel) []models.Alert {
	var fired []models.Alert
	now := m.now().UTC()

	for _, rule := range m.rules {
		if !rule.Enabled {
			continue
		}

		metric, err := models.ParseMetric(rule.Metric)
		if err != nil {
			m.logger.Warnf(providers.TypeRefresh, "Skipping alert rule with %v", err)
			continue
		}

		actual := channelValue(ch, metric)
		if !compare(actual, rule.Operator, rule.Value) {
			continue
		}

		alertType := rule.Type
		if alertType == "" {
			alertType = "warning"
		}
		message := rule.Message
		if message == "" {
			message = fmt.Sprintf("%s %s %s %.0f (actual %.0f)", ch.Name, rule.Metric, rule.Operator, rule.Value, actual)
		}

		fired = append(fired, models.Alert{
			ChannelID:      ch.ID,
			Metric:         rule.Metric,
			ThresholdValue: rule.Value,
			ActualValue:    actual,
			Type:           alertType,
			Message:        message,
			TriggeredAt:    now,
		})
	}
	return fired
}

func channelValue(ch *models.Channel, metric models.Metric) float64 {
	p := models.ChannelPoint(ch, ch.LastUpdated)
	return float64(p.Counter(metric))
}

func compare(actual float64, operator string, value float64) bool {
	switch operator {
	case ">=":
		return actual >= value
	case "<=":
		return actual <= value
	case ">":
		return actual > value
	case "<":
		return actual < value
	case "==":
		return actual == value
	}
	return false
}

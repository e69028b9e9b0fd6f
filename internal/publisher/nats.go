// Package publisher emits prediction update events so external presentation
// layers can re-render without polling.
package publisher

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/algiers-transit/arrivals-backend-go/internal/metrics"
)

// NATSPublisher publishes prediction update events to a NATS subject per
// route/station
type NATSPublisher struct {
	nc      *nats.Conn
	metrics *metrics.Collector
}

// UpdateMessage is the published event payload
type UpdateMessage struct {
	RouteNumber string    `json:"routeNumber"`
	StationID   string    `json:"stationId"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewNATSPublisher connects to the given URL
func NewNATSPublisher(url string, m *metrics.Collector) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("arrivals-backend"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &NATSPublisher{nc: nc, metrics: m}, nil
}

// PredictionUpdated publishes one update event. Failures are counted and
// logged, never propagated.
func (p *NATSPublisher) PredictionUpdated(routeNumber, stationID string) {
	msg := UpdateMessage{RouteNumber: routeNumber, StationID: stationID, Timestamp: time.Now()}
	b, err := json.Marshal(msg)
	if err != nil {
		log.Printf("publisher: failed to encode update: %v", err)
		return
	}

	subject := fmt.Sprintf("arrivals.%s.%s", subjectToken(routeNumber), subjectToken(stationID))
	if err := p.nc.Publish(subject, b); err != nil {
		log.Printf("publisher: publish %s failed: %v", subject, err)
		if p.metrics != nil {
			p.metrics.PublishErrs.Inc()
		}
		return
	}
	if p.metrics != nil {
		p.metrics.PredictionsPublished.Inc()
	}
}

// Close drains and closes the connection
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}

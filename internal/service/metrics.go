package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/incognito-chat/backend/internal/service"

type authMetrics struct {
	signup metric.Int64Counter
	login  metric.Int64Counter
}

func newAuthMetrics() *authMetrics {
	meter := otel.Meter(meterName)
	signup, err := meter.Int64Counter("auth.signup", metric.WithDescription("Signup attempts by outcome."))
	if err != nil {
		otel.Handle(err)
	}
	login, err := meter.Int64Counter("auth.login", metric.WithDescription("Login attempts by outcome."))
	if err != nil {
		otel.Handle(err)
	}
	return &authMetrics{signup: signup, login: login}
}

func (m *authMetrics) record(ctx context.Context, counter metric.Int64Counter, err error) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", Outcome(err))))
}

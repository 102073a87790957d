package tiles

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/olablt/gio-photomap/tiles"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

package observability

import (
	"go.opentelemetry.io/otel"
)

// Tracer creates pipeline spans. It is a no-op until the host process
// installs a tracer provider.
var Tracer = otel.Tracer("github.com/leapstack-labs/shardparse")

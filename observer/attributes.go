package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for organizer observability spans and metrics.
var (
	AttrToolName       = attribute.Key("tool.name")
	AttrToolStatus     = attribute.Key("tool.status")
	AttrToolResultKeys = attribute.Key("tool.result_keys")

	AttrTurnCorrelationID = attribute.Key("turn.correlation_id")
	AttrTurnAgent         = attribute.Key("turn.agent")
	AttrTurnStop          = attribute.Key("turn.stop")
)

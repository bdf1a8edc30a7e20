package tracing

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrCommandAction = "command.action"
	AttrCommandArgs   = "command.args"

	AttrBufferName  = "buffer.name"
	AttrBufferLines = "buffer.lines"
	AttrBufferDirty = "buffer.dirty"

	AttrSnapshotID    = "snapshot.id"
	AttrSnapshotName  = "snapshot.name"
	AttrSnapshotStats = "snapshot.stats"

	AttrQueryLimit = "query.limit"
	AttrQueryRows  = "query.rows"
)

// Span name prefixes.
const (
	SpanPrefixCommand = "command."
	SpanPrefixHistory = "history."
)

// End sets the span status from err and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

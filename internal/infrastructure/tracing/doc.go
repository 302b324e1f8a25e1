/*
Package tracing provides lightweight request tracing.

# Overview

Spans are created per HTTP request and per generation, linked through the
context, and written to the structured logger once finished. Trace context
travels over the X-Trace-ID and X-Span-ID headers so a provider call made on
behalf of a request carries the same trace ID.

# Usage

	tracer := tracing.New("postpilot", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "generation.generate")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
	span.SetTag("platform", "twitter")

# Performance

- Buffered span collection (1000 spans), dropped with a warning when full
- Async span processing
*/
package tracing

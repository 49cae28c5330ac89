/*
Package observability provides tools for monitoring the dependents engine.

It turns engine lifecycle hooks into Prometheus metrics and structured log
records. Both are plain domain.LifecycleHooks values and can be combined
with LifecycleHooks.Merge before being handed to the engine.
*/
package observability

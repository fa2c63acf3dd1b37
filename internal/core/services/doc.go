// Package services implements the core document pipeline behind the
// driving ports. The lifecycle service owns every Document aggregate,
// schedules clean/chunk/metadata runs on a bounded worker pool, and
// guards against stale results with a per-document generation counter.
package services

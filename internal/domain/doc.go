// Package domain models wildfire risk data for Scotland and the tiered
// resolution rules that decide where each answer comes from.
//
// # Data Sources
//
// Fire danger ratings and active fire detections originate from EFFIS, the
// European Forest Fire Information System operated under Copernicus
// Emergency Management (https://effis.jrc.ec.europa.eu/). EFFIS publishes
// the Fire Weather Index (FWI) danger classes and MODIS/VIIRS hotspot
// detections through a WFS endpoint. A secondary regional provider covers
// mainland Scotland with locally calibrated danger assessments and is
// consulted only for coordinates inside that sub-region.
//
// # Tiered Resolution
//
// Every public resolution call walks an ordered chain of tiers until one
// produces a value:
//
//	risk:      fresh cache → EFFIS → regional → synthetic
//	incidents: fresh cache → EFFIS → synthetic
//	location:  last-known → live position → cached manual → prompt → default
//
// Each tier runs under its own deadline, nested inside a global budget for
// the whole chain. Tier failures (timeout, network, permission) are never
// surfaced to callers; they only move the chain along. The one visible
// consequence is provenance: every result carries a [Freshness] tag naming
// the tier that produced it, and the UI renders trust indicators from that
// tag. A value stored live and served later from the cache is re-tagged
// cached on the way out; the tag is never dropped.
//
// # Fire Danger Classes
//
// Risk levels follow the six EFFIS FWI danger classes (very low through
// extreme). The synthetic fallback generator produces a deterministic,
// seasonally plausible class for a coordinate cell so that an offline device
// still renders a stable, honest ("synthetic"-tagged) value rather than an
// error screen.
//
// # Coordinate Hygiene
//
// Latitude/longitude pairs are validated at every entry point and rejected
// with [ErrInvalidInput] when non-finite or outside [-90,90]x[-180,180],
// never silently clamped. Raw coordinates never appear in logs; diagnostics
// use the 2-decimal-place redacted form from the geo package (~1.1 km
// resolution).
package domain

// Package site provides the microgrid overview shown on the dashboard:
// solar generation, battery, household load, grid connectivity, active
// alerts and today's energy series.
//
// There is no telemetry acquisition. StaticProvider serves fixed readings
// representative of a village installation on a clear day.
package site

// Package sim provides an in-memory flash bank implementing domain.Device.
//
// The bank is used by the CLI as the device behind image files and by tests
// to observe erases, programs and lock state, and to inject faults.
package sim

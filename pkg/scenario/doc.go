// Package scenario contains ready-made graphs.
//
// The traction-control scenario models the driven wheels of a car with an
// ABS-style controller: a throttle, a traction-control switch and one grip
// slider per wheel drive the wheel speed integrators; a delayed tachometer
// feeds an ECU that brakes any wheel spinning well above the average of the
// others.
package scenario

// Package interstitial implements the countdown controller behind the
// redirect page shown to short-link visitors: a visible countdown that
// triggers exactly one navigation when it expires or when the visitor asks
// to skip ahead, whichever comes first.
//
// The controller is a small timer-driven state machine. It starts in
// StateWaiting until a target URL is known, counts down once per second in
// StateCounting, and guards the navigation side effect with a one-shot
// latch so the manual and automatic triggers cannot both fire. Navigation
// uses replace semantics so the visitor's back button returns to whatever
// referred them here, never to the countdown page itself.
//
// Every timer and goroutine the controller owns is released by Close, on
// all exit paths. A controller instance is scoped to one page view and is
// not reusable after Close.
package interstitial

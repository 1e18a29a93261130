/*
Package session owns one mutable build and turns every mutation into a recalculation.

A Session runs a single goroutine that holds the current build, the loaded engine,
the output callback and the sync target. Public methods post closures to that
goroutine and wait for the result, so requests are applied strictly in arrival
order and no build state is ever shared.

# Lifecycle

A Session starts Uninitialized. Boot moves it through Booting to Ready once the
engine is loaded and its disk cache is wired. Every operation except BuildInfo
fails with domain.ErrNotReady before that.

# Ticks and sync

After each change to the build the session pushes a handle to the build into the
sync target, then recomputes output and hands it to the callback. Ticks that
cannot produce output (no build, no calculator, no main skill) are silent.

Callbacks, sync targets and hooks run on the session goroutine. They must not call
back into the session synchronously.
*/
package session

/*
Package boundary marshals values across the isolation boundary of a session.

A session's mutable state lives on a single owner goroutine. Values that the far
side must be able to call back into (the live build, the gem catalogue) are
wrapped in a Ref before they are handed out: the far side holds a handle, not a
copy, and every access runs on the owner goroutine. Plain data (decoded text,
computed output) crosses as owned copies and is never wrapped.

Refs marshal to JSON as {"$ref": "<id>", "type": "<type>"}; a Registry resolves
those ids back to live handles for transports that cannot carry Go values.
*/
package boundary

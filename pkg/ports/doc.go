/*
Package ports defines the driven ports (interfaces) of a build session.

These interfaces decouple the session orchestration from the calculation engine,
the host's key/value storage and the observer store, allowing the session to run
against the reference engine, test doubles or a host-provided implementation.

# Key Interfaces

  - EngineLoader / Engine / Calculator: the opaque calculation engine boundary.
  - KeyValueStore / StorageBridge: host storage used to cache engine initialization data.
  - ConfigSchema: read-only lookup of config option descriptors.
  - SyncTarget: the observer store that receives the current build handle.
*/
package ports

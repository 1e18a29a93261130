/*
Package domain contains the core domain models of a build session.

It defines the mutable Build owned by a session, the mutually exclusive config
inputs attached to it, the config option descriptors used to decide whether a
value is inert, and the computed output produced by a recalculation tick. This
package is kept pure and free of I/O, transport or persistence concerns.

# Key Entities

  - Build: the structured character build (config, skills, tree, allocated nodes).
  - Input: a named config value carrying exactly one boolean, numeric or string payload.
  - ConfigOption: the descriptor that defines a config key's kind and inert value.
  - Outputs: the result of one tick, delivered to the registered output callback.
  - Lifecycle: the boot state of the engine behind a session.
*/
package domain

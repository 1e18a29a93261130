/*
Package buildsync keeps one mutable build session in sync with its observers.

A session (package session) owns a single build on its own goroutine. Every
mutation, whether importing a shared build code, toggling a config option or
allocating passive nodes, is applied in order and followed by a recalculation
(a tick) whose output is handed to a callback. After each change a handle to
the live build is pushed to an observer store (package store) so that the far
side always sees the latest build without copying it.

# Layout

  - pkg/domain: the build, config inputs and descriptors, outputs and errors.
  - pkg/ports: the engine boundary, the storage bridge and the sync target.
  - pkg/session: the session goroutine and its operations.
  - pkg/boundary: handles for values that must not be copied across the boundary.
  - pkg/store: the replace-whole-value observer store.
  - pkg/adapters: storage (memory, file, redis, sqlite), the config schema,
    a reference engine and the HTTP and MCP transports.

# Usage

	sess := session.New(localengine.NewLoader(localengine.WithDataDir("data")),
		session.WithSchema(schema),
		session.WithStorage(file.New("")),
	)
	defer sess.Close()

	builds := store.NewWritable[boundary.Ref[*domain.Build]]()
	if err := sess.Boot(ctx, manifest, onOutput, builds); err != nil {
		return err
	}
	sess.LoadInitialData(ctx, nil)
	if err := sess.ImportBuild(ctx, code); err != nil {
		return err
	}
	sess.SetConfigOption(ctx, "enemyIsBoss", "Pinnacle")

The cmd/buildsync binary wires these pieces behind an HTTP server, an MCP
server or a one-shot calculation.
*/
package buildsync

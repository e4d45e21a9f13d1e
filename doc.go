// Package camelalloc provides a process-wide, leak-on-free arena allocator.
//
// Memory is handed out by bumping a head pointer through fixed-size chunks
// that are mapped on demand from a capability-controlled memory space.
// Freeing never reclaims anything: released bytes are counted as leaked.
// The design trades memory for simplicity and predictable latency in
// short-lived or bootstrap-phase processes.
//
// # Quick Start
//
//	space, _ := memfd.New()     // or simulated.New() in tests
//	camelalloc.Init(space)      // exactly once
//
//	r, err := camelalloc.Default.Allocate(camelalloc.Layout{Size: 256, Align: 16})
//	if err != nil {
//	    // errors.Is(err, camelalloc.ErrOutOfMemory)
//	}
//	buf := r.Bytes()
//
// # Lifecycle
//
// An Allocator starts empty. Before Init, each arena serves requests from a
// 4 KiB scratch buffer embedded in the allocator itself, which is enough for
// runtime bootstrap. Init clones the memory-space capability once per arena;
// from then on arenas map 2 MiB chunks as needed, up to 16 chunks (32 MiB)
// per arena and 64 MiB in total. Calling Init twice is fatal.
//
// # Concurrency
//
// The allocator owns two arenas, each behind its own mutex. An allocation
// first tries every arena without blocking and only then waits on each in
// turn, so concurrent callers spread over the arenas while every caller still
// makes progress.
//
// # Failure Model
//
// Ordinary exhaustion returns ErrOutOfMemory (or a nil pointer from Alloc).
// Broken invariants, such as a chunk that cannot be mapped after growth was
// committed, are fatal: the allocator logs, calls the handler set with
// WithFatalHandler and panics with a *FatalError.
//
// # Observability
//
//	a := camelalloc.New(
//	    camelalloc.WithLogger(camelalloc.NewJSONLogger(slog.LevelDebug)),
//	    camelalloc.WithMetricsCollector(&camelalloc.BasicMetricsCollector{}),
//	)
//	fmt.Println(a.Pressure()) // used 1.2 MiB, mapped 2.0 MiB of 64 MiB, ...
//
// Package prom exports Pressure and BasicMetricsCollector to Prometheus.
package camelalloc

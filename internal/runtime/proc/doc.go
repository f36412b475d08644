// Package proc launches managed services as detached local processes.
//
// Each service runs in its own process group so that stop requests reach the
// whole tree. Full group termination is only guaranteed on Linux, where the
// kernel's job-control semantics deliver signals to every member of the child
// process group. On Windows the runtime offers best-effort semantics: an
// interrupt followed by a hard kill is delivered to the direct child only,
// and any grandchildren must be cleaned up separately by the caller.
package proc

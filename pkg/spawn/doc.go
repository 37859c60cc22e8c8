// Package spawn starts processes from a QNX spawn() inheritance description
// using the host's clone and execve.
//
// The child applies, in this order: process group, signal mask, session,
// stack limit, default then ignored signal dispositions, descriptor remap,
// and finally exec. A failing step ends the child with the errno as its exit
// status.
//
// prlimit requires kernel >= 2.6.36
// execveat requires kernel >= 3.19
// pipe2, dup3 requires kernel >= 2.6.27
package spawn

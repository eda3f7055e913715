// Package threads implements the machine's thread table.
//
// Each Thread record carries a scheduling State:
//   - Enabled: the scheduler may pick it as the active thread
//   - BlockedOnLock(l): waiting for lock l; never picked until a release of l
//     hands the lock to it
//   - Terminated: finished (owned by the thread-management layer)
//
// Records also carry a per-thread vector clock used by the happens-before
// consumer. The lock subsystem never touches clocks; it only reports which
// threads were synchronized during a step.
//
// The table provides the two enumerations the rest of the machine needs:
// BlockedOn(l), the wake candidate set for a release of l, and Enabled(),
// the set the scheduler chooses from.
package threads

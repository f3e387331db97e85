// Package override holds the time-bounded user grants that suppress policy
// actions: disclaimer acceptances and sticky cancellations.
//
// Both stores map a hostname to an expiry. A grant is in force while the
// evaluation time is strictly before its expiry; reads never remove entries.
// Growth is bounded by a periodic Sweep and by a maximum entry count.
package override

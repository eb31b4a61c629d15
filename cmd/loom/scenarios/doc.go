/*
Package scenarios bundles the small Coyote-style test programs loom's run
command drives the scheduler through: a racy and a lock-guarded mutual
exclusion example, a counting semaphore, and a missed-signal deadlock. Each
is a self-contained []*Scenario entry in All; the run command resolves a
scenario by name via Find and replays it for as many iterations as
requested.
*/
package scenarios

/*
Package report is the one-bucket-per-concern BoltDB store this repo uses
for anything that needs to survive past a single process run: a "reports"
bucket holding one JSON-encoded Report per completed iteration, keyed by
its id.

	store, _ := report.NewBoltStore(dataDir)
	defer store.Close()

	store.SaveReport(&report.Report{
		ID:       uuid.NewString(),
		Scenario: "mutual-exclusion",
		Outcome:  report.OutcomeDeadlock,
		Seed:     seed,
	})

	deadlocks, _ := store.ListReportsByOutcome(report.OutcomeDeadlock)
*/
package report

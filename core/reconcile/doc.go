// Package reconcile decides how envelope records land in a live database.
//
// The reconcile flow has three parts:
//
// 1. Plan: BuildPlan compares the records selected for replay against the
//    catalog and marks each container "Exists" or "Will create", with the
//    totals a run would attempt.
//
// 2. Ladder: Reconciler.EnsureContainer creates a missing container by trying
//    the record's own partition key schema first, then the "/pk" fallback.
//    Records without a usable schema get "/id". A container is Failed only
//    after every rung has failed.
//
// 3. Report: ContainerResult tracks one container through
//    Pending, Ready or Creating, Writing, then Succeeded or Failed.
//    Report aggregates them: full success, degraded success when some
//    containers failed, and a fatal error when none succeeded.
//
// # Usage Example
//
//	plan := reconcile.BuildPlan(records, existing)
//	r := reconcile.NewReconciler(client, log, m)
//	report := reconcile.NewReport()
//	for _, cp := range plan.Containers {
//	    res := reconcile.NewResult(cp.Name)
//	    ...
//	    report.Add(res)
//	}
//	if err := report.Err(); err != nil {
//	    return err
//	}
package reconcile

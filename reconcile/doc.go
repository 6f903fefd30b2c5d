// Package reconcile runs ordered convergence steps against a host.
//
// Each step probes current state, applies the minimum corrective
// action when the probe reports divergence, and re-probes to verify.
// Steps execute strictly sequentially; there is no rollback.
package reconcile

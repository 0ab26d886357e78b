// Package workflow implements the Temporal workflow definitions for the
// hypothesis validation pipeline.
//
// ValidationWorkflow drives one run through its stages by executing the
// stage activities and applying their reports to the record batch held in
// workflow state:
//
//   - GenerateCandidates (only when the request carries a prompt)
//   - ValidateCandidates
//   - SimulateCandidates (when numerical validation is enabled)
//   - AnalyzeBatch (when meta oversight is enabled, after every record settled)
//
// Workflows must stay deterministic. Randomness, wall-clock time and I/O
// belong in activities; the workflow only uses workflow-safe APIs.
package workflow

// Package preflight provides readiness checks for the services and
// filesystem paths clipdeck depends on.
//
// These checks run in two contexts:
//   - The upload command calls ForUpload before touching the network. If any
//     check fails the run stops before a credential or byte is spent.
//   - The CLI "clipdeck check" command renders RunAll as a status table.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight

// Package campaign implements campaign setup and enrollment.
//
// Enrollment is where tracking tokens are minted: one random UUID per
// (campaign, recipient) pairing, never regenerated. The package also builds
// per-recipient engagement reports with their criticality labels. It depends
// on repository interfaces defined here; implementations live in
// repository/postgres/ and repository/memory/.
package campaign

// Package engagement records tracking callbacks.
//
// A callback is authorized solely by its tracking token. Recording appends
// one EmailEvent and folds the same occurrence into the CampaignRecipient
// row in a single store operation; repositories must implement the fold as a
// conditional write (set-if-null, atomic increment), never as a read followed
// by a write in Go.
package engagement

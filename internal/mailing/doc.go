// Package mailing renders simulation messages and delivers them.
//
// BuildTrackingURLs derives every callback URL of a recipient from its
// tracking token. The Renderer fills a campaign's Liquid template with those
// URLs and the recipient's name; the Composer assembles the final
// sending.Message. Transports for SES, SMTP and a log-only development mode
// implement sending.Sender and are selected from config by NewSender.
package mailing

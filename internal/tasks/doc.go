// Package tasks holds the background work run by the job manager.
//
//	send_email    renders and delivers one email (queue "email")
//	weekly_quote  every Sunday 09:00 UTC, rotates the quote and fans out one
//	              send_email per active subscriber
//
// Fan-out jobs carry the unique key weekly_quote:<email>:<date>, so a rerun on
// the same day does not send twice.
package tasks

// Package handlers exposes the email service over a JSON HTTP API:
// previews, queued and test sends, the variable catalog and template admin,
// delivery logs, and weekly quote subscriptions.
package handlers

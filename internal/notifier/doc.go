// Package notifier delivers formatted tournament messages.
//
// The notifier package posts messages to a Discord channel webhook, with a
// dry-run implementation for local testing. It handles Discord's message
// length limit and paces consecutive posts to respect webhook rate limits.
package notifier

// Package notification provides the delivery channel for user-facing
// notices. A NotificationManager holds a registry of notice templates and
// the notifiers (email, SMS) able to dispatch them; callers send by notice
// type and never deal with transport details.
package notification

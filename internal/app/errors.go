package app

import "errors"

// ErrRecipientUnreachable marks a delivery failure that will never
// recover (recipient blocked or removed the bot). The dispatcher
// deactivates such recipients; all other transport errors are
// transient.
var ErrRecipientUnreachable = errors.New("recipient unreachable")

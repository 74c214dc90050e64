package accessor

import "errors"

// ErrNoJournal is returned by History and Replay when no journal is configured.
var ErrNoJournal = errors.New("no journal configured")

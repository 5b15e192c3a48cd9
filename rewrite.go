package recap

import (
	"errors"
	"fmt"
)

// ErrNothingToCompact is returned by Rewrite when no message
// precedes the retained window — every non-system message would
// be kept verbatim, so replacing history would be a no-op. The
// caller must leave the history untouched.
var ErrNothingToCompact = errors.New("nothing to compact")

// summaryPrefix marks the synthetic message so readers (human
// or model) can tell it apart from organic assistant output.
const summaryPrefix = "[Context Summary]\n\n"

// CanCompact reports whether Rewrite would succeed for the
// given history and retention count. Cheap structural check the
// controller runs before paying for a summarization call.
func CanCompact(history []Message, retainRecent int) bool {
	nonSystem := 0
	for _, msg := range history {
		if msg.Role != RoleSystem {
			nonSystem++
		}
	}
	return nonSystem > retainRecent
}

// Rewrite produces the replacement message sequence for a
// compacted conversation:
//
//	[system messages...] ++ [assistant summary] ++ [recent...]
//
// System messages keep their original relative order and are
// never summarized. The last retainRecent non-system messages
// are preserved verbatim for continuity. Everything else is
// represented only by the summary, which is wrapped in a
// synthetic assistant-role message so downstream consumers
// treat it as prior context rather than a system directive.
//
// When notify is true a visible note is appended to the summary
// telling the user how many messages were folded in.
//
// Returns ErrNothingToCompact when no message precedes the
// retained window; the input is never modified either way.
func Rewrite(
	history []Message,
	summary string,
	retainRecent int,
	notify bool,
) ([]Message, error) {
	var systemMsgs []Message
	var rest []Message
	for _, msg := range history {
		if msg.Role == RoleSystem {
			systemMsgs = append(systemMsgs, msg)
		} else {
			rest = append(rest, msg)
		}
	}

	if len(rest) <= retainRecent {
		return nil, ErrNothingToCompact
	}

	summarized := rest[:len(rest)-retainRecent]
	recent := rest[len(rest)-retainRecent:]

	content := summaryPrefix + summary
	if notify {
		content += fmt.Sprintf(
			"\n\n---\n*Note: Context compacted to save memory. "+
				"%d messages summarized into this summary.*",
			len(summarized),
		)
	}

	result := make([]Message, 0, len(systemMsgs)+1+len(recent))
	result = append(result, systemMsgs...)
	result = append(result, Assistant(content))
	result = append(result, recent...)
	return result, nil
}

package tutor

// Window trims the message list sent to the generator
// Implementations must not modify the slice they are given
type Window interface {
	Trim(turns []Turn) []Turn
}

// WindowFunc adapts a function to the Window interface
type WindowFunc func(turns []Turn) []Turn

// Trim calls f(turns)
func (f WindowFunc) Trim(turns []Turn) []Turn {
	return f(turns)
}

// KeepLastTurns keeps the system turn plus the last n conversation turns
// The kept conversation always starts with a user turn
// n <= 0 disables trimming
func KeepLastTurns(n int) Window {
	return WindowFunc(func(turns []Turn) []Turn {
		if n <= 0 {
			return turns
		}

		var system []Turn
		rest := turns
		if len(rest) > 0 && rest[0].Role == RoleSystem {
			system = rest[:1]
			rest = rest[1:]
		}
		if len(rest) <= n {
			return turns
		}

		rest = rest[len(rest)-n:]
		for len(rest) > 1 && rest[0].Role != RoleUser {
			rest = rest[1:]
		}

		out := make([]Turn, 0, len(system)+len(rest))
		out = append(out, system...)
		return append(out, rest...)
	})
}

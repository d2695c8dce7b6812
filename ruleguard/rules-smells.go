package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Two guards in a row returning the same value can be merged:
	//   if a { return err }
	//   if b { return err }
	//   => if a || b { return err }
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	// Nested loops are worth a second look: the walker and the batch
	// driver must stay linear in the number of fragments.
	m.Match(`for $*_ { for $*_ { $*_ } }`).
		Report(`nested for-loop; consider extracting inner loop logic or reducing algorithmic complexity`)
}

// outbound flags HTTP calls that would run without a timeout. The chat,
// translation and LLM adapters each own an *http.Client with one.
func outbound(m dsl.Matcher) {
	m.Match(`http.DefaultClient`).
		Report(`http.DefaultClient has no timeout; use the adapter's own *http.Client`)

	m.Match(`http.Get($*_)`, `http.Post($*_)`, `http.PostForm($*_)`, `http.Head($*_)`).
		Report(`package-level http helpers use http.DefaultClient; build a request with a context instead`)

	m.Match(`http.NewRequest($method, $url, $body)`).
		Where(!m.File().Name.Matches(`_test\.go$`)).
		Report(`request has no context; use http.NewRequestWithContext`).
		Suggest(`http.NewRequestWithContext(ctx, $method, $url, $body)`)
}

// sentinels keeps domain error matching on errors.Is so wrapped errors
// still map to the right status code.
func sentinels(m dsl.Matcher) {
	m.Match(`$err == $sentinel`, `$err != $sentinel`).
		Where(m["err"].Type.Is(`error`) && m["sentinel"].Text.Matches(`^(\w+\.)?Err[A-Z]\w*$`)).
		Report(`compare errors with errors.Is($err, $sentinel)`)

	m.Match(`fmt.Errorf($format, $*_, $err)`).
		Where(m["err"].Type.Is(`error`) && !m["format"].Text.Matches(`%w`)).
		Report(`wrap errors with %w so callers can match them with errors.Is`)
}

// logs keeps diagnostics on the structured logger.
func logs(m dsl.Matcher) {
	m.Match(`fmt.Println($*_)`, `fmt.Printf($*_)`, `log.Printf($*_)`, `log.Println($*_)`).
		Where(m.File().PkgPath.Matches(`/internal/`)).
		Report(`use the structured logger from internal/infra/logging`)
}

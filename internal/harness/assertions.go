package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/zhanong/ecsframework/internal/trace"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Trace    []trace.Event // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] tick=%d %s", ev.Seq, ev.Tick, ev.Kind)
			if ev.Scene != "" {
				fmt.Fprintf(&buf, " %s", ev.Scene)
			}
			if len(ev.Detail) > 0 {
				fmt.Fprintf(&buf, " %s", formatDetail(ev.Detail))
			}
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// matchEvent reports whether ev has the assertion's kind, scene (if set)
// and a superset of its detail.
func matchEvent(ev trace.Event, a Assertion) bool {
	if string(ev.Kind) != a.Kind {
		return false
	}
	if a.Scene != "" && ev.Scene != a.Scene {
		return false
	}
	for k, want := range a.Detail {
		if got, ok := ev.Detail[k]; !ok || got != want {
			return false
		}
	}
	return true
}

// assertTraceContains checks that some event matches kind, scene and detail.
func assertTraceContains(events []trace.Event, a Assertion) error {
	for _, ev := range events {
		if matchEvent(ev, a) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describe(a),
		Actual:   "not found in trace",
		Trace:    events,
	}
}

// assertTraceOrder checks that kinds appear as a subsequence of the trace.
// Intervening events are allowed and a kind may be listed more than once.
func assertTraceOrder(events []trace.Event, a Assertion) error {
	next := 0
	for _, ev := range events {
		if next < len(a.Kinds) && string(ev.Kind) == a.Kinds[next] {
			next++
		}
	}
	if next == len(a.Kinds) {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("kinds in order: %v", a.Kinds),
		Actual:   fmt.Sprintf("matched %v, then no %s", a.Kinds[:next], a.Kinds[next]),
		Trace:    events,
	}
}

// assertTraceCount checks the exact number of matching events.
func assertTraceCount(events []trace.Event, a Assertion) error {
	count := 0
	for _, ev := range events {
		if matchEvent(ev, a) {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, describe(a)),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    events,
		}
	}
	return nil
}

// assertFinalState checks snapshot fields and flags (subset semantics).
func assertFinalState(result *Result, a Assertion) error {
	actual := snapshotMap(result.State)

	for _, key := range sortedKeys(a.Expect) {
		want := normalize(a.Expect[key])
		got := actual[key]
		if !reflect.DeepEqual(want, got) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s = %v", key, want),
				Actual:   fmt.Sprintf("%s = %v", key, got),
			}
		}
	}

	names := make([]string, 0, len(a.Flags))
	for name := range a.Flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		got, ok := result.State.Flags[name]
		if !ok {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("flag %s = %v", name, a.Flags[name]),
				Actual:   fmt.Sprintf("unknown flag %s", name),
			}
		}
		if got != a.Flags[name] {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("flag %s = %v", name, a.Flags[name]),
				Actual:   fmt.Sprintf("flag %s = %v", name, got),
			}
		}
	}
	return nil
}

// normalize maps YAML-decoded values onto the snapshotMap types.
func normalize(v any) any {
	switch val := v.(type) {
	case int64:
		return int(val)
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case nil:
		return []any{}
	default:
		return val
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func describe(a Assertion) string {
	s := a.Kind
	if a.Scene != "" {
		s += " " + a.Scene
	}
	if len(a.Detail) > 0 {
		s += " " + formatDetail(a.Detail)
	}
	return s
}

func formatDetail(detail map[string]string) string {
	keys := make([]string, 0, len(detail))
	for k := range detail {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + detail[k]
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			err = assertFinalState(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

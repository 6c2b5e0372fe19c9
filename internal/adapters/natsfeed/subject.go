// Package natsfeed carries row changes over NATS subjects.
//
// Every change is published once per filterable column, on
//
//	<prefix>.<table>.<event>.<column>.<value>
//
// so a binding maps onto a single subscription subject, with "*" standing in for
// any event type.
package natsfeed

import (
	"fmt"
	"strings"

	"github.com/example/roomsync/internal/ports/secondary"
)

// DefaultSubjectPrefix is the subject namespace changes are published under.
const DefaultSubjectPrefix = "roomsync.changes"

// filterColumns lists, per table, the columns bindings may filter on.
var filterColumns = map[string][]string{
	secondary.TableMemberships: {"user_id", "room_id"},
	secondary.TableRooms:       {"id", "owner_id"},
	secondary.TableMatches:     {"room_id", "id"},
}

// FilterColumns returns the columns a change on table is published under.
func FilterColumns(table string) []string {
	return filterColumns[table]
}

// Subject builds the subject for one table/event/column/value combination.
func Subject(prefix, table, event, column, value string) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return strings.Join([]string{prefix, table, eventToken(event), column, escapeToken(value)}, ".")
}

// BindingSubject returns the subscription subject for a binding.
func BindingSubject(prefix string, b secondary.Binding) (string, error) {
	if b.Table == "" || b.Column == "" {
		return "", fmt.Errorf("binding needs a table and a column: %+v", b)
	}
	if !isFilterColumn(b.Table, b.Column) {
		return "", fmt.Errorf("column %s of %s is not published", b.Column, b.Table)
	}
	return Subject(prefix, b.Table, b.Event, b.Column, b.Value), nil
}

func isFilterColumn(table, column string) bool {
	for _, c := range filterColumns[table] {
		if c == column {
			return true
		}
	}
	return false
}

func eventToken(event string) string {
	if event == "" || event == secondary.EventAny {
		return "*"
	}
	return strings.ToLower(event)
}

// escapeToken makes an arbitrary value safe to use as a single subject token.
// Anything outside [A-Za-z0-9_-] is percent-encoded. Subscribers re-check the payload,
// so the rare collision (a literal "_" against an empty value) is filtered out there.
func escapeToken(value string) string {
	if value == "" {
		return "_"
	}
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// Package todo defines tasks as the client sees them and the rules that turn
// backend payloads into them.
//
// A backend task is any JSON object. The client reads two fields from it, each
// resolved from an ordered list of candidate keys where the first present key
// wins:
//
//	id:   "id", "todo_id", "_id"
//	text: "text", "title", "task"
//
// A key is present when it exists, is not null, and holds a scalar. Numeric ids
// keep their JSON literal text, so {"id": 7} and {"id": "7"} name the same task.
//
// # Placeholders
//
// When no id is present the task gets a random "tmp-" id and Placeholder is set.
// Placeholder ids are only good as render keys; they never identify a task on the
// server.
//
// # Lists
//
// A List keeps server order. Items created locally are prepended. Ids are unique
// within a List at all times.
package todo

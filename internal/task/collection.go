package task

// Collection helpers operate on the canonical task slice owned by the UI
// model. Canonical order is server order with created tasks prepended;
// display order is derived separately (see Visible).

// Prepend inserts t at the head of the collection.
func Prepend(tasks []Task, t Task) []Task {
	out := make([]Task, 0, len(tasks)+1)
	out = append(out, t)
	return append(out, tasks...)
}

// Remove drops the task with the given id, preserving the order of the rest.
// Unknown ids leave the collection unchanged.
func Remove(tasks []Task, id string) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the task with the given id.
func Find(tasks []Task, id string) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// SetCompleted writes the completion flag of the task with the given id in
// place and reports whether the task was present.
func SetCompleted(tasks []Task, id string, completed bool) bool {
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Completed = completed
			return true
		}
	}
	return false
}

// ApplyServer overwrites the local copy's completion state and update
// timestamp with the server's authoritative values. Missing ids are a no-op;
// the task may have been deleted or replaced by a refresh while the request
// was in flight.
func ApplyServer(tasks []Task, authoritative Task) bool {
	for i := range tasks {
		if tasks[i].ID == authoritative.ID {
			tasks[i].Completed = authoritative.Completed
			if !authoritative.UpdatedAt.IsZero() {
				tasks[i].UpdatedAt = authoritative.UpdatedAt
			}
			return true
		}
	}
	return false
}

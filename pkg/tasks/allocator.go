package tasks

import (
	"fmt"
	"sort"

	"github.com/taskrhythm-app/taskrhythm-backend/pkg/energy"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// preferredLevels expands a task's effort into the window energy levels it
// accepts, most preferred first. High effort never falls back to low energy
// windows; low effort fits anywhere.
func preferredLevels(effort Effort) []energy.Level {
	switch effort {
	case EffortHigh:
		return []energy.Level{energy.LevelHigh, energy.LevelMedium}
	case EffortMedium:
		return []energy.Level{energy.LevelMedium, energy.LevelHigh, energy.LevelLow}
	case EffortLow:
		return []energy.Level{energy.LevelLow, energy.LevelMedium, energy.LevelHigh}
	}

	return nil
}

// AllocationDecision is the engine's verdict for a single task: the window
// it was placed into, or nil when no window could take it
type AllocationDecision struct {
	TaskID   primitive.ObjectID  `json:"taskId"`
	WindowID *primitive.ObjectID `json:"windowId"`
}

// WindowCapacity snapshots a window's capacity after an allocation run
type WindowCapacity struct {
	WindowID  primitive.ObjectID `json:"windowId"`
	Capacity  int                `json:"capacity"`
	Remaining int                `json:"remaining"`
}

// AllocationResult is the outcome of one allocation run. It is a plain
// value; persisting the decisions is the caller's job.
type AllocationResult struct {
	Decisions       []AllocationDecision `json:"decisions"`
	Capacities      []WindowCapacity     `json:"capacities"`
	AssignedCount   int                  `json:"assignedCount"`
	UnassignedCount int                  `json:"unassignedCount"`
	Message         string               `json:"message"`
}

// Allocate assigns tasks to energy windows for a single user.
//
// Tasks are processed in priority order: deadline-bearing tasks first
// (earliest deadline first), then by effort descending, then by creation
// time ascending. Each task is tried against its preferred energy levels in
// order; within a level, windows are tried earliest in the week first. The
// first window with enough remaining capacity takes the task. A task that
// fits nowhere stays unassigned, which is a normal outcome.
//
// used holds the minutes per window already consumed by assignments that
// survive this run; a window starts with its capacity minus those minutes,
// never below zero. Callers that cleared all assignments pass nil.
//
// The inputs are never mutated; remaining capacity lives in a per-run map.
// Given identical input the result is identical. Allocate only returns an
// error when a precondition the callers validate is violated, since broken
// durations or window times would make the capacity arithmetic meaningless.
func Allocate(windows []energy.Window, taskList []Task, used map[primitive.ObjectID]int) (*AllocationResult, error) {
	for i := range windows {
		if err := windows[i].Validate(); err != nil {
			return nil, fmt.Errorf("window %s is invalid: %v", windows[i].ID.Hex(), err)
		}
	}

	for i := range taskList {
		if err := taskList[i].Validate(); err != nil {
			return nil, fmt.Errorf("task %s is invalid: %v", taskList[i].ID.Hex(), err)
		}
	}

	result := &AllocationResult{
		Decisions:  make([]AllocationDecision, 0, len(taskList)),
		Capacities: make([]WindowCapacity, 0, len(windows)),
	}

	// Remaining capacity is per run; stored windows stay untouched
	remaining := make(map[primitive.ObjectID]int, len(windows))
	for i := range windows {
		free := windows[i].Capacity() - used[windows[i].ID]
		if free < 0 {
			free = 0
		}
		remaining[windows[i].ID] = free
	}

	orderedWindows := make([]energy.Window, len(windows))
	copy(orderedWindows, windows)
	sort.SliceStable(orderedWindows, func(i, j int) bool {
		if orderedWindows[i].Day != orderedWindows[j].Day {
			return orderedWindows[i].Day < orderedWindows[j].Day
		}
		return orderedWindows[i].Start < orderedWindows[j].Start
	})

	prioritized := make([]Task, len(taskList))
	copy(prioritized, taskList)
	sort.SliceStable(prioritized, func(i, j int) bool {
		a, b := prioritized[i], prioritized[j]

		if (a.Deadline != nil) != (b.Deadline != nil) {
			return a.Deadline != nil
		}
		if a.Deadline != nil && b.Deadline != nil && !a.Deadline.Equal(*b.Deadline) {
			return a.Deadline.Before(*b.Deadline)
		}

		if a.Effort != b.Effort {
			return a.Effort > b.Effort
		}

		return a.CreatedAt.Before(b.CreatedAt)
	})

	assignments := make(map[primitive.ObjectID]primitive.ObjectID, len(taskList))

	for _, task := range prioritized {
		window := findWindow(&task, orderedWindows, remaining)
		if window == nil {
			continue
		}

		remaining[window.ID] -= task.EstimatedDuration
		assignments[task.ID] = window.ID
	}

	// Report one decision per input task, in the caller's order
	for i := range taskList {
		decision := AllocationDecision{TaskID: taskList[i].ID}
		if windowID, ok := assignments[taskList[i].ID]; ok {
			id := windowID
			decision.WindowID = &id
			result.AssignedCount++
		} else {
			result.UnassignedCount++
		}
		result.Decisions = append(result.Decisions, decision)
	}

	for i := range orderedWindows {
		result.Capacities = append(result.Capacities, WindowCapacity{
			WindowID:  orderedWindows[i].ID,
			Capacity:  orderedWindows[i].Capacity(),
			Remaining: remaining[orderedWindows[i].ID],
		})
	}

	result.Message = allocationMessage(len(windows), len(taskList), result.AssignedCount, result.UnassignedCount)

	return result, nil
}

// findWindow returns the first window that can take the task, trying the
// task's preferred energy levels in order and, within a level, the windows
// earliest in the week first
func findWindow(task *Task, orderedWindows []energy.Window, remaining map[primitive.ObjectID]int) *energy.Window {
	for _, level := range preferredLevels(task.Effort) {
		for i := range orderedWindows {
			if orderedWindows[i].Level != level {
				continue
			}

			if remaining[orderedWindows[i].ID] >= task.EstimatedDuration {
				return &orderedWindows[i]
			}
		}
	}

	return nil
}

func allocationMessage(windowCount int, taskCount int, assigned int, unassigned int) string {
	if windowCount == 0 {
		return "To get started, define your energy windows to match your natural rhythm."
	}

	if taskCount == 0 {
		return "Your schedule is clear. Add tasks when you're ready."
	}

	switch {
	case assigned == 0 && unassigned > 0:
		return "These tasks are waiting for an energy window that fits. Consider adding more windows or adjusting task durations."
	case assigned > 0 && unassigned > 0:
		return fmt.Sprintf("Scheduled %d task(s). Some tasks need more window space or flexibility.", assigned)
	case assigned > 0:
		return fmt.Sprintf("Great! All %d task(s) are scheduled to match your energy.", assigned)
	}

	return "Your schedule is ready."
}

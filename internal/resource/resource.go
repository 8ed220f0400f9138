// Package resource describes the eight planner resource kinds exercised
// against the API: their endpoints, display labels and fixed test payloads.
package resource

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownKind is returned by Lookup for names that match no kind.
var ErrUnknownKind = errors.New("unknown resource kind")

// Payload is a JSON request body.
type Payload = map[string]any

// Env carries the run-dependent inputs of the fixed payloads.
type Env struct {
	// Now is the run clock; dates in payloads derive from it.
	Now time.Time

	// Email and Name identify the test account.
	Email string
	Name  string
}

// Kind is one planner resource type.
type Kind struct {
	// Name is the command-line name ("vision").
	Name string

	// Label names the record created by the smoke run ("Vision-1").
	Label string

	// Plural names the collection in reports ("Visions").
	Plural string

	// Path is the API path for create and list ("/visions").
	Path string

	// NestedKey is the envelope key some endpoints wrap created records in.
	NestedKey string

	// Listable reports whether GET on Path returns the collection.
	Listable bool

	build func(Env) Payload
}

// Payload returns the fixed creation payload for this kind.
func (k Kind) Payload(env Env) Payload {
	if k.build == nil {
		return Payload{}
	}
	return k.build(env)
}

// IDKeys returns the candidate identifier keys of a creation response,
// nested keys first.
func (k Kind) IDKeys() []string {
	return []string{k.NestedKey + "._id", "data._id", "_id", "id"}
}

var kinds = []Kind{
	{
		Name: "vision", Label: "Vision-1", Plural: "Visions", Path: "/visions",
		NestedKey: "vision", Listable: true,
		build: func(Env) Payload {
			return Payload{
				"title":       "Vision-1: Life 2025",
				"description": "My comprehensive life vision for 2025 - Personal, Professional, Health",
				"targetDate":  "2025-12-31",
				"category":    "Life",
				"status":      "Active",
			}
		},
	},
	{
		Name: "goal", Label: "Goal-1", Plural: "Goals", Path: "/goals",
		NestedKey: "goal", Listable: true,
		build: func(Env) Payload {
			return Payload{
				"title":       "Goal-1: Fitness Achievement",
				"description": "Achieve fitness goals - Exercise 5 times a week, 10k steps daily",
				"targetDate":  "2025-06-30",
				"category":    "Health",
				"priority":    "High",
				"status":      "In Progress",
			}
		},
	},
	{
		Name: "task", Label: "Task-1", Plural: "Tasks", Path: "/tasks",
		NestedKey: "task", Listable: true,
		build: func(Env) Payload {
			return Payload{
				"title":       "Task-1: Project Setup",
				"description": "Complete backend TypeScript migration and testing setup",
				"dueDate":     "2025-01-15",
				"status":      "In Progress",
				"priority":    "High",
			}
		},
	},
	{
		Name: "todo", Label: "Todo-1", Plural: "Todos", Path: "/todos",
		NestedKey: "todo", Listable: true,
		build: func(Env) Payload {
			return Payload{
				"title":       "Todo-1: Daily Meditation",
				"description": "30-minute meditation session every morning",
				"completed":   false,
				"dueDate":     "2025-01-10",
			}
		},
	},
	{
		Name: "health", Label: "Health Record", Plural: "Health", Path: "/health",
		NestedKey: "healthRecord", Listable: true,
		build: func(env Env) Payload {
			return Payload{
				"date":        env.Now.Format("2006-01-02"),
				"steps":       10000,
				"weight":      75.5,
				"waterIntake": 8,
				"sleepHours":  8,
				"exercise":    "Yoga - 1 hour",
				"notes":       "Great day! Felt energetic",
			}
		},
	},
	{
		Name: "reminder", Label: "Reminder-1", Plural: "Reminders", Path: "/reminders",
		NestedKey: "reminder", Listable: true,
		build: func(env Env) Payload {
			return Payload{
				"title":    "Reminder-1: Meditation Time",
				"message":  "Time for your daily meditation session",
				"remindAt": env.Now.Add(24 * time.Hour).Format(time.RFC3339),
				"category": "Mindfulness",
				"isActive": true,
			}
		},
	},
	{
		Name: "milestone", Label: "Milestone-1", Plural: "Milestones", Path: "/milestones",
		NestedKey: "milestone", Listable: true,
		build: func(Env) Payload {
			return Payload{
				"title":       "Milestone-1: First Month Success",
				"description": "Successfully completed first month of yoga practice",
				"targetDate":  "2025-01-31",
				"status":      "In Progress",
				"progress":    30,
			}
		},
	},
	{
		Name: "contact", Label: "Contact Message", Plural: "Contact", Path: "/contact",
		NestedKey: "contact", Listable: false,
		build: func(env Env) Payload {
			return Payload{
				"name":    env.Name,
				"email":   env.Email,
				"subject": "API Testing - Contact Form",
				"message": "Testing contact form functionality and cloud sync capability",
			}
		},
	},
}

// All returns every kind in creation order.
func All() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Listable returns the kinds whose collection can be read back, in order.
func Listable() []Kind {
	var out []Kind
	for _, k := range kinds {
		if k.Listable {
			out = append(out, k)
		}
	}
	return out
}

// Lookup finds a kind by name, plural or path (case-insensitive, trimmed).
func Lookup(name string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "/")
	for _, k := range kinds {
		if key == k.Name || key == strings.ToLower(k.Plural) || key == strings.TrimPrefix(k.Path, "/") {
			return k, nil
		}
	}
	return Kind{}, fmt.Errorf("%w: %s", ErrUnknownKind, strings.TrimSpace(name))
}

package api

import (
	"encoding/json"

	"dayplan/pkg/datenorm"
)

// Todo statuses as stored by the backend.
const (
	StatusNotDone   = "Not done"
	StatusCompleted = "completed"

	ScheduleUpcoming = "upcoming"
)

// User is the identity record returned by the backend.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	LoginMethod string `json:"login_method,omitempty"`
}

// UnmarshalJSON accepts both "id" and "_id", string or numeric.
func (u *User) UnmarshalJSON(b []byte) error {
	type alias User
	var raw struct {
		alias
		ID      json.RawMessage `json:"id"`
		MongoID json.RawMessage `json:"_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*u = User(raw.alias)
	u.ID = firstID(raw.ID, raw.MongoID)
	return nil
}

// Credentials for the email login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the body of POST /users/user.
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	LoginMethod string `json:"login_method"`
}

// LoginResult is what a successful login yields. User is nil when the
// backend did not include it in the body.
type LoginResult struct {
	Token string
	User  *User
}

// Todo is a to-do item.
type Todo struct {
	ID          string           `json:"-"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	DueDate     datenorm.Instant `json:"due_date"`
	Status      string           `json:"status"`
	IsRecurring bool             `json:"is_recurring"`
	Category    string           `json:"category"`
}

// Completed reports whether the todo is done.
func (t Todo) Completed() bool {
	return t.Status == StatusCompleted
}

func (t *Todo) UnmarshalJSON(b []byte) error {
	type alias Todo
	var raw struct {
		alias
		ID      json.RawMessage `json:"id"`
		MongoID json.RawMessage `json:"_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*t = Todo(raw.alias)
	t.ID = firstID(raw.ID, raw.MongoID)
	return nil
}

// MarshalJSON includes _id only when set, so create payloads carry none.
func (t Todo) MarshalJSON() ([]byte, error) {
	type alias Todo
	return json.Marshal(struct {
		ID string `json:"_id,omitempty"`
		alias
	}{t.ID, alias(t)})
}

// TodoPatch is a partial update; nil fields are left unchanged.
type TodoPatch struct {
	Title       *string           `json:"title,omitempty"`
	Description *string           `json:"description,omitempty"`
	DueDate     *datenorm.Instant `json:"due_date,omitempty"`
	Status      *string           `json:"status,omitempty"`
	IsRecurring *bool             `json:"is_recurring,omitempty"`
	Category    *string           `json:"category,omitempty"`
}

// Schedule is a timed calendar entry.
type Schedule struct {
	ID        string           `json:"-"`
	UserID    string           `json:"user_id,omitempty"`
	Title     string           `json:"title"`
	StartTime datenorm.Instant `json:"start_time"`
	EndTime   datenorm.Instant `json:"end_time"`
	Status    string           `json:"status"`
}

func (s *Schedule) UnmarshalJSON(b []byte) error {
	type alias Schedule
	var raw struct {
		alias
		ID      json.RawMessage `json:"id"`
		MongoID json.RawMessage `json:"_id"`
		UserID  json.RawMessage `json:"user_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = Schedule(raw.alias)
	s.ID = firstID(raw.ID, raw.MongoID)
	s.UserID = firstID(raw.UserID)
	return nil
}

func (s Schedule) MarshalJSON() ([]byte, error) {
	type alias Schedule
	return json.Marshal(struct {
		ID string `json:"_id,omitempty"`
		alias
	}{s.ID, alias(s)})
}

// SchedulePatch is a partial update; nil fields are left unchanged.
type SchedulePatch struct {
	Title     *string           `json:"title,omitempty"`
	StartTime *datenorm.Instant `json:"start_time,omitempty"`
	EndTime   *datenorm.Instant `json:"end_time,omitempty"`
	Status    *string           `json:"status,omitempty"`
}

// firstID returns the first non-empty id among raw JSON strings or numbers.
func firstID(raws ...json.RawMessage) string {
	for _, raw := range raws {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s != "" {
				return s
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

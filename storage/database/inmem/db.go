// Package inmemdb provides map-backed repositories for tests and local
// development without a database.
package inmemdb

import (
	"sync"

	"github.com/desiigner101/stunotes/core/adminreq"
	"github.com/desiigner101/stunotes/core/note"
	"github.com/desiigner101/stunotes/core/task"
	"github.com/desiigner101/stunotes/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users     map[string]*user.User
	tasks     map[string]*task.Task
	notes     map[string]*note.Note
	reminders map[string]*task.Reminder
	requests  map[string]*adminreq.AdminRequest
}

func Open() (*DB, error) {
	return &DB{
		users:     make(map[string]*user.User),
		tasks:     make(map[string]*task.Task),
		notes:     make(map[string]*note.Note),
		reminders: make(map[string]*task.Reminder),
		requests:  make(map[string]*adminreq.AdminRequest),
	}, nil
}

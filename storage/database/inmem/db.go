package inmemdb

import (
	"sync"
	"time"

	"github.com/vitor518/Mangues/core/achievement"
	"github.com/vitor518/Mangues/core/fact"
	"github.com/vitor518/Mangues/core/user"
)

type (
	// DB keeps every table behind one lock, so multi-table writes are atomic.
	DB struct {
		mutex sync.RWMutex

		userSeq int

		users        map[int]*user.User
		achievements map[string]achievement.Achievement
		grants       map[int][]grantRow // by user id
		species      map[int][]int
		threats      map[int][]int
		actions      map[int][]fact.ThreatAction
		games        map[int][]fact.GameResult
	}

	// grants are appended, so slice order is grant order
	grantRow struct {
		achievementID string
		points        int
		grantedAt     time.Time
	}
)

func Open() (*DB, error) {
	db := &DB{
		users:        make(map[int]*user.User),
		achievements: make(map[string]achievement.Achievement),
		grants:       make(map[int][]grantRow),
		species:      make(map[int][]int),
		threats:      make(map[int][]int),
		actions:      make(map[int][]fact.ThreatAction),
		games:        make(map[int][]fact.GameResult),
	}
	return db, nil
}

func (db *DB) userExists(id int) bool {
	_, ok := db.users[id]
	return ok
}

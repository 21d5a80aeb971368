package back

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	// DefaultMaxCandidatesPerRole bounds the matchmaking enumeration, see
	// findBestComposition.
	DefaultMaxCandidatesPerRole = 8

	// DefaultProposalTimeout is how long a proposed game waits for
	// confirmation before it auto-declines.
	DefaultProposalTimeout = 5 * time.Minute
)

type Back struct {
	db            *sqlx.DB
	notifications chan Notification
	queue         *queue

	// channelLocks serializes "queue mutation + matchmaking attempt" per
	// channel, playerLocks serializes rating history updates per player.
	channelLocks *keyedLocks
	playerLocks  *keyedLocks

	maxCandidatesPerRole int
	proposalTimeout      time.Duration
}

func New(sqlDriver string, sqlDSN string, maxCandidatesPerRole int, proposalTimeout time.Duration) (*Back, error) {
	// Why even bother converting names? A single greppable string across all
	// your source code is better than any odd conversion scheme you could ever
	// come up with.
	// HACK: This is global but putting this in init() makes test ugly.
	// As only the Back relies on the DB, this seems like an okay-ish place.
	sqlx.NameMapper = func(v string) string { return v }

	db, err := sqlx.Connect(sqlDriver, sqlDSN)
	if err != nil {
		return nil, err
	}

	if maxCandidatesPerRole <= 0 {
		maxCandidatesPerRole = DefaultMaxCandidatesPerRole
	}
	if proposalTimeout <= 0 {
		proposalTimeout = DefaultProposalTimeout
	}

	return &Back{
		db:            db,
		notifications: make(chan Notification, 64),
		queue:         newQueue(),
		channelLocks:  newKeyedLocks(),
		playerLocks:   newKeyedLocks(),

		maxCandidatesPerRole: maxCandidatesPerRole,
		proposalTimeout:      proposalTimeout,
	}, nil
}

func (b *Back) GetNotificationsChan() <-chan Notification {
	return b.notifications
}

// Run expires stale proposals until done is closed.
func (b *Back) Run(wg *sync.WaitGroup, done <-chan struct{}) {
	wg.Add(1)
	defer wg.Done()
	log.Print("info: starting Back dæmon")

	for {
		if err := b.expireStaleProposals(); err != nil {
			log.Printf("error: expireStaleProposals: %s", err)
		}

		select {
		case <-time.After(30 * time.Second):
		case <-done:
			return
		}
	}
}

type transactionCallback func(*sqlx.Tx) error

func (b *Back) transaction(cb transactionCallback) error {
	tx, err := b.db.Beginx()
	if err != nil {
		return err
	}

	if err := cb(tx); err != nil {
		if err2 := tx.Rollback(); err2 != nil {
			return fmt.Errorf("rollback error: %s\noriginal error: %s", err2, err)
		}

		return err
	}

	return tx.Commit()
}

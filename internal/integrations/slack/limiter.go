package slackbot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// Each uploader may start a few analyses back to back, then one a minute.
	uploadsPerUser   = rate.Limit(1.0 / 60)
	uploadBurst      = 3
	limiterStaleTime = 30 * time.Minute
)

type uploader struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// userLimiter throttles recognizer calls per Slack user.
type userLimiter struct {
	mu        sync.Mutex
	users     map[string]*uploader
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastPrune time.Time
}

func newUserLimiter(limit rate.Limit, burst int) *userLimiter {
	return &userLimiter{
		users: make(map[string]*uploader),
		limit: limit,
		burst: burst,
		now:   time.Now,
	}
}

func (l *userLimiter) allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) > limiterStaleTime {
		for id, u := range l.users {
			if now.Sub(u.lastSeen) > limiterStaleTime {
				delete(l.users, id)
			}
		}
		l.lastPrune = now
	}

	u, ok := l.users[userID]
	if !ok {
		u = &uploader{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.users[userID] = u
	}
	u.lastSeen = now
	return u.limiter.AllowN(now, 1)
}

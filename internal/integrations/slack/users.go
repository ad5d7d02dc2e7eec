package slackbot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

const userCacheTTL = 5 * time.Minute

type cachedName struct {
	name      string
	fetchedAt time.Time
}

// userCache remembers Slack display names so uploads from the same person do
// not each cost a users.info call.
type userCache struct {
	sync.Mutex
	ttl   time.Duration
	names map[string]cachedName
	now   func() time.Time
}

func newUserCache(ttl time.Duration) *userCache {
	return &userCache{ttl: ttl, names: make(map[string]cachedName), now: time.Now}
}

func (c *userCache) get(userID string) (string, bool) {
	c.Lock()
	defer c.Unlock()
	entry, ok := c.names[userID]
	if !ok || c.now().Sub(entry.fetchedAt) >= c.ttl {
		return "", false
	}
	return entry.name, true
}

func (c *userCache) put(userID, name string) {
	c.Lock()
	defer c.Unlock()
	c.names[userID] = cachedName{name: name, fetchedAt: c.now()}
}

// displayName returns the best human name Slack has for the user, or "" when
// the lookup fails.
func (c *userCache) displayName(ctx context.Context, api *slack.Client, userID string) string {
	if userID == "" {
		return ""
	}
	if name, ok := c.get(userID); ok {
		return name
	}
	user, err := api.GetUserInfoContext(ctx, userID)
	if err != nil {
		zap.S().Warnf("resolve user name: user=%s error: %v", userID, err)
		return ""
	}
	name := preferredName(*user)
	c.put(userID, name)
	return name
}

func preferredName(user slack.User) string {
	for _, n := range []string{user.Profile.DisplayName, user.RealName, user.Name} {
		if n = strings.TrimSpace(n); n != "" {
			return n
		}
	}
	return ""
}

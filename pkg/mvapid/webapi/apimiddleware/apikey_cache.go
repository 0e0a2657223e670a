package apimiddleware

import (
	"sync"

	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
	"github.com/mediavault/vault/pkg/mvdb/stor"
)

// APIKeyCache is a read-through cache in front of the users table so every
// request doesn't cost a database lookup.
type APIKeyCache struct {
	apikeyCacheMu sync.RWMutex
	cache         map[string]*mvmodel.User
	userStor      stor.UserStor
}

func NewAPIKeyCache(userStor stor.UserStor) *APIKeyCache {
	return &APIKeyCache{
		cache:    make(map[string]*mvmodel.User),
		userStor: userStor,
	}
}

func (c *APIKeyCache) GetUserByAPIKey(apikey string) (*mvmodel.User, error) {
	c.apikeyCacheMu.RLock()

	if user, ok := c.cache[apikey]; ok {
		c.apikeyCacheMu.RUnlock()
		return user, nil
	}

	// Need to upgrade to a Write Lock
	c.apikeyCacheMu.RUnlock()
	c.apikeyCacheMu.Lock()
	defer c.apikeyCacheMu.Unlock()

	// Now that we've upgraded check again if the user exists. A different
	// goroutine may have filled the entry between the read lock release
	// and the write lock acquire.
	if user, ok := c.cache[apikey]; ok {
		return user, nil
	}

	user, err := c.userStor.GetUserByAPIToken(apikey)
	if err != nil {
		// No user matching that key
		return nil, err
	}

	c.cache[apikey] = user
	return user, nil
}

func (c *APIKeyCache) DeleteUserByAPIKey(apikey string) {
	c.apikeyCacheMu.Lock()
	defer c.apikeyCacheMu.Unlock()
	delete(c.cache, apikey)
}

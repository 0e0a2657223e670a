package lock

import (
	"sync"

	"github.com/apex/log"
)

// keyLock is one key's mutex plus the count of goroutines that hold or are
// waiting on it. The count is only touched under the locker's map mutex.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// KeyLocker hands out one mutex per string key. The vault uses it to
// serialize completion-check-and-assemble for a single upload key while
// leaving different uploads fully independent. Entries are reference
// counted: a key's mutex is removed from the map only once no goroutine
// holds or waits on it, so the map does not grow with every upload key ever
// seen, and a release can never strand a waiter on an orphaned mutex.
type KeyLocker struct {
	mapMutex sync.Mutex
	keyMap   map[string]*keyLock
}

func NewKeyLocker() *KeyLocker {
	return &KeyLocker{
		keyMap: make(map[string]*keyLock),
	}
}

func (l *KeyLocker) AcquireLock(key string) {
	l.mapMutex.Lock()
	kl, ok := l.keyMap[key]
	if !ok {
		kl = &keyLock{}
		l.keyMap[key] = kl
	}
	kl.refs++
	l.mapMutex.Unlock()

	kl.mu.Lock()
}

func (l *KeyLocker) ReleaseLock(key string) {
	l.mapMutex.Lock()
	defer l.mapMutex.Unlock()

	kl, ok := l.keyMap[key]
	if !ok {
		log.Errorf("ReleaseLock called on key (%s) with no mutex", key)

		return
	}

	kl.mu.Unlock()

	kl.refs--
	if kl.refs == 0 {
		delete(l.keyMap, key)
	}
}

func (l *KeyLocker) WithLock(key string, f func() error) error {
	l.AcquireLock(key)
	defer l.ReleaseLock(key)
	return f()
}

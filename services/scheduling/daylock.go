package scheduling

import "sync"

// dayLock serializes validate+write sequences per (placeID, date) key. The
// conflict check and the subsequent store writes are two separate network
// calls, so without this a second request for the same staff day could
// observe the same free state and also succeed.
type dayLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDayLock() *dayLock {
	return &dayLock{locks: make(map[string]*sync.Mutex)}
}

func dayKey(placeID, date string) string {
	return placeID + "|" + date
}

// Lock acquires the mutex for one place-day and returns its release func.
func (l *dayLock) Lock(placeID, date string) func() {
	m := l.get(dayKey(placeID, date))
	m.Lock()
	return m.Unlock
}

// LockPair acquires two place-day mutexes in a stable order, so concurrent
// reschedules touching the same pair of days cannot deadlock. Both keys may
// be equal, in which case the mutex is taken once.
func (l *dayLock) LockPair(placeID, dateA, dateB string) func() {
	keyA, keyB := dayKey(placeID, dateA), dayKey(placeID, dateB)
	if keyA == keyB {
		return l.Lock(placeID, dateA)
	}
	if keyB < keyA {
		keyA, keyB = keyB, keyA
	}
	first, second := l.get(keyA), l.get(keyB)
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

func (l *dayLock) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

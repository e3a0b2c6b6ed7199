package crawl

// maxPending caps the frontier's pending queue. Link fan-out on large
// sites can be huge; anything past the cap is dropped rather than queued.
const maxPending = 20

// frontier holds one crawl's mutable state: the visited set and the
// pending queue. A URL is enqueued at most once; visited is a superset of
// every URL ever dequeued. Not safe for concurrent use; each crawl run
// owns its frontier.
type frontier struct {
	seen    map[string]bool
	pending []string
}

func newFrontier(seed string) *frontier {
	return &frontier{
		seen:    map[string]bool{seed: true},
		pending: []string{seed},
	}
}

// push enqueues a URL unless it was ever seen or the queue is full.
func (f *frontier) push(url string) {
	if f.seen[url] || len(f.pending) >= maxPending {
		return
	}
	f.seen[url] = true
	f.pending = append(f.pending, url)
}

// pop dequeues the next URL, returning false when the frontier is empty.
func (f *frontier) pop() (string, bool) {
	if len(f.pending) == 0 {
		return "", false
	}
	url := f.pending[0]
	f.pending = f.pending[1:]
	return url, true
}

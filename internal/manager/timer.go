package manager

import (
	"sync"
	"time"
)

// singleShotTimer implements fsm.Timer with time.AfterFunc. Arm always
// replaces any previously armed timer — the fsm package never expects
// more than one outstanding deadline per connection, per §3.
type singleShotTimer struct {
	mu sync.Mutex
	t  *time.Timer
}

func newSingleShotTimer() *singleShotTimer {
	return &singleShotTimer{}
}

func (s *singleShotTimer) Arm(seconds int, onExpiry func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t != nil {
		s.t.Stop()
	}
	s.t = time.AfterFunc(time.Duration(seconds)*time.Second, onExpiry)
}

func (s *singleShotTimer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t != nil {
		s.t.Stop()
		s.t = nil
	}
}

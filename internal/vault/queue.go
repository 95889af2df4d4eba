package vault

import "fmt"

// Withdrawal queue: a bounded ordered list of active strategy addresses that
// fixes withdrawal priority. Slots are left-packed; "" marks a trailing empty
// slot. All mutations preserve the no-duplicate invariant.

func (s *state) queueLen() int {
	for i, addr := range s.queue {
		if addr == "" {
			return i
		}
	}
	return MaxStrategies
}

func (s *state) queueIndex(strategy string) int {
	for i, addr := range s.queue {
		if addr == "" {
			break
		}
		if addr == strategy {
			return i
		}
	}
	return -1
}

// WithdrawalQueue returns the occupied slots in priority order.
func (v *Vault) WithdrawalQueue() (queue []string) {
	v.view(func(s *state) {
		n := s.queueLen()
		queue = make([]string, n)
		copy(queue, s.queue[:n])
	})
	return
}

// WithdrawalQueueAt returns the strategy at a slot, "" when empty or out of
// range.
func (v *Vault) WithdrawalQueueAt(index int) (strategy string) {
	v.view(func(s *state) {
		if index >= 0 && index < MaxStrategies {
			strategy = s.queue[index]
		}
	})
	return
}

// AddStrategyToQueue appends an active, not yet queued strategy at the first
// empty slot. Governance or management.
func (v *Vault) AddStrategyToQueue(caller, strategy string) error {
	return v.mutateQueue(caller, strategy, func(s *state) error {
		if s.queueIndex(strategy) >= 0 {
			return fmt.Errorf("strategy %s already queued: %w", strategy, ErrInvalidStrategy)
		}
		n := s.queueLen()
		if n >= MaxStrategies {
			return fmt.Errorf("withdrawal queue full: %w", ErrInvalidStrategy)
		}
		s.queue[n] = strategy
		return nil
	})
}

// RemoveStrategyFromQueue removes a queued strategy and left-shifts the
// entries after it. Governance or management.
func (v *Vault) RemoveStrategyFromQueue(caller, strategy string) error {
	s, err := v.begin()
	if err != nil {
		return err
	}
	if err := s.authorize(caller, s.governance, s.management); err != nil {
		v.abort()
		return err
	}
	if err := s.queueRemove(strategy); err != nil {
		v.abort()
		return err
	}
	v.commit(s)
	return nil
}

// InsertStrategyToQueue places an active strategy at index, clamped to the
// current length. An existing occurrence is removed first, so repeated
// inserts are last-writer-wins and the queue never holds duplicates.
func (v *Vault) InsertStrategyToQueue(caller, strategy string, index int) error {
	return v.mutateQueue(caller, strategy, func(s *state) error {
		if i := s.queueIndex(strategy); i >= 0 {
			s.queueShiftLeft(i)
		}
		n := s.queueLen()
		if n >= MaxStrategies {
			return fmt.Errorf("withdrawal queue full: %w", ErrInvalidStrategy)
		}
		if index < 0 {
			index = 0
		}
		if index > n {
			index = n
		}
		for i := n; i > index; i-- {
			s.queue[i] = s.queue[i-1]
		}
		s.queue[index] = strategy
		return nil
	})
}

func (v *Vault) mutateQueue(caller, strategy string, apply func(*state) error) error {
	s, err := v.begin()
	if err != nil {
		return err
	}
	if err := s.authorize(caller, s.governance, s.management); err != nil {
		v.abort()
		return err
	}
	if !s.strategies[strategy].active() {
		v.abort()
		return fmt.Errorf("strategy %s not active: %w", strategy, ErrInvalidStrategy)
	}
	if err := apply(s); err != nil {
		v.abort()
		return err
	}
	v.commit(s)
	return nil
}

func (s *state) queueRemove(strategy string) error {
	i := s.queueIndex(strategy)
	if i < 0 {
		return fmt.Errorf("strategy %s not queued: %w", strategy, ErrInvalidStrategy)
	}
	s.queueShiftLeft(i)
	return nil
}

// queueShiftLeft closes the gap at index i, leaving a trailing empty slot.
func (s *state) queueShiftLeft(i int) {
	for ; i < MaxStrategies-1; i++ {
		s.queue[i] = s.queue[i+1]
		if s.queue[i] == "" {
			return
		}
	}
	s.queue[MaxStrategies-1] = ""
}
